package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Client talks to the lost-and-found REST API.
type Client struct {
	baseURL   *url.URL
	http      *resty.Client
	token     string
	userAgent string
	logger    *log.Logger
}

const (
	defaultBaseURL        = "http://127.0.0.1:8000"
	defaultUserAgent      = "retriever/0.1"
	defaultRequestTimeout = 10 * time.Second
	notificationLimit     = 100
)

// Options configure a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *log.Logger
}

// NewClient builds a Client for the API rooted at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	c := &Client{
		baseURL:   base,
		token:     strings.TrimSpace(opts.Token),
		userAgent: defaultUserAgent,
		logger:    opts.Logger,
	}
	c.http = resty.New().
		SetBaseURL(base.String()).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", c.userAgent).
		SetError(&APIError{})
	if c.token != "" {
		c.http.SetAuthToken(c.token)
	}
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})
	return c, nil
}

// BaseURL returns the API root; uploaded images are served beneath it.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return defaultBaseURL
	}
	return c.baseURL.String()
}

// CurrentUser retrieves the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var payload User
	if err := c.do(ctx, "GET", "/users/me", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MyItems retrieves the items visible to the signed-in user.
func (c *Client) MyItems(ctx context.Context) ([]Item, error) {
	var payload []Item
	if err := c.do(ctx, "GET", "/items/my-items", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteItem removes a reported item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", "/items/"+formatID(id), nil, nil)
}

// Matches retrieves AI match candidates.
func (c *Client) Matches(ctx context.Context) ([]Match, error) {
	var payload []Match
	if err := c.do(ctx, "GET", "/matches/matches", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ApprovedMatches retrieves matches an admin has approved.
func (c *Client) ApprovedMatches(ctx context.Context) ([]Match, error) {
	var payload []Match
	if err := c.do(ctx, "GET", "/matches/approved-matches", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ApproveMatch marks a pending match as approved.
func (c *Client) ApproveMatch(ctx context.Context, matchID int64) error {
	return c.do(ctx, "POST", "/admin/admin/approve-match/"+formatID(matchID), nil, nil)
}

// RejectMatch marks a pending match as rejected.
func (c *Client) RejectMatch(ctx context.Context, matchID int64) error {
	return c.do(ctx, "POST", "/admin/admin/reject-match/"+formatID(matchID), nil, nil)
}

// ClaimItem hands the found item of an approved match back to its owner.
func (c *Client) ClaimItem(ctx context.Context, matchID int64) error {
	return c.do(ctx, "POST", "/items/claim-item/"+formatID(matchID), nil, nil)
}

// Staff retrieves the business's staff accounts.
func (c *Client) Staff(ctx context.Context) ([]StaffMember, error) {
	var payload []StaffMember
	if err := c.do(ctx, "GET", "/staff/my-staff", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SetStaffActive enables or disables a staff account.
func (c *Client) SetStaffActive(ctx context.Context, userID int64, active bool) error {
	values := url.Values{}
	values.Set("active", strconv.FormatBool(active))
	return c.doQuery(ctx, "PATCH", "/staff/"+formatID(userID)+"/status", values, nil)
}

// Customers retrieves the business's customer accounts.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var payload []Customer
	if err := c.do(ctx, "GET", "/customers/customer", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ToggleCustomerStatus flips a customer between active and inactive.
func (c *Client) ToggleCustomerStatus(ctx context.Context, userID int64) error {
	return c.do(ctx, "PATCH", "/customers/"+formatID(userID)+"/toggle-status", nil, nil)
}

// DeleteCustomer removes a customer account.
func (c *Client) DeleteCustomer(ctx context.Context, userID int64) error {
	return c.do(ctx, "DELETE", "/customers/"+formatID(userID), nil, nil)
}

// Notifications retrieves the most recent notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(notificationLimit))
	var payload []Notification
	if err := c.doQuery(ctx, "GET", "/notifications/latest", values, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UnreadCount retrieves the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var payload struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, "GET", "/notifications/unread_count", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, "PATCH", "/notifications/"+formatID(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, "PATCH", "/notifications/mark_all_read", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	return c.send(ctx, c.request(ctx, body, dest), method, path)
}

func (c *Client) doQuery(ctx context.Context, method, path string, query url.Values, dest any) error {
	req := c.request(ctx, nil, dest)
	req.SetQueryParamsFromValues(query)
	return c.send(ctx, req, method, path)
}

func (c *Client) request(ctx context.Context, body, dest any) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if dest != nil {
		req.SetResult(dest)
	}
	return req
}

func (c *Client) send(ctx context.Context, req *resty.Request, method, path string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	started := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		c.logWarn("request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("execute request: %w", err)
	}
	if resp.IsError() {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode()}
		if parsed, ok := resp.Error().(*APIError); ok && parsed != nil {
			apiErr.Detail = parsed.Detail
		}
		c.logWarn("api error", "method", method, "path", path, "status", apiErr.Status)
		return apiErr
	}
	if resp.StatusCode() >= 300 {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode()}
	}
	if c.logger != nil {
		c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode(), "elapsed", time.Since(started))
	}
	return nil
}

func (c *Client) logWarn(msg string, keyvals ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, keyvals...)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
