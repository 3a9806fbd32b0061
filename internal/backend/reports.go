package backend

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ItemReport is a new lost or found report. The server decides which one
// from the reporter's role. Image is optional.
type ItemReport struct {
	ItemType    string `validate:"required"`
	Brand       string
	Color       string
	Description string `validate:"required"`
	Location    string `validate:"required"`
	ImageName   string
	ImageType   string `validate:"required_with=Image"`
	Image       []byte
}

// ReportResult is the reply to ReportItem.
type ReportResult struct {
	Message string `json:"message"`
	ItemID  int64  `json:"item_id"`
}

// ItemUpdate changes the editable fields of a report. Nil fields are left
// untouched by the server.
type ItemUpdate struct {
	ItemType     *string `json:"item_type,omitempty"`
	Brand        *string `json:"brand,omitempty"`
	Color        *string `json:"color,omitempty"`
	Description  *string `json:"description,omitempty"`
	LostLocation *string `json:"lost_location,omitempty"`
}

// NewStaff is a staff account to create under the admin's business.
type NewStaff struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// ReportItem files a report as a multipart form, attaching the image when
// one is given.
func (c *Client) ReportItem(ctx context.Context, report ItemReport) (*ReportResult, error) {
	report.ItemType = strings.TrimSpace(report.ItemType)
	report.Description = strings.TrimSpace(report.Description)
	report.Location = strings.TrimSpace(report.Location)
	if err := validate.Struct(report); err != nil {
		return nil, fmt.Errorf("report item: %w", err)
	}
	var payload ReportResult
	req := c.request(ctx, nil, &payload)
	req.SetMultipartFormData(map[string]string{
		"item_type":        report.ItemType,
		"brand":            strings.TrimSpace(report.Brand),
		"color":            strings.TrimSpace(report.Color),
		"description":      report.Description,
		"lost_at_location": report.Location,
	})
	if len(report.Image) > 0 {
		name := filepath.Base(strings.TrimSpace(report.ImageName))
		if name == "." || name == "/" || name == "" {
			name = "upload"
		}
		req.SetMultipartField("image", name, report.ImageType, bytes.NewReader(report.Image))
	}
	if err := c.send(ctx, req, "POST", "/items/report-item"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Item retrieves one of the signed-in user's reports.
func (c *Client) Item(ctx context.Context, id int64) (*Item, error) {
	var payload Item
	if err := c.do(ctx, "GET", "/items/item/"+formatID(id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateItem edits a report. The server refuses once a match exists.
func (c *Client) UpdateItem(ctx context.Context, id int64, update ItemUpdate) (*Item, error) {
	var payload Item
	if err := c.do(ctx, "PUT", "/items/item/"+formatID(id), update, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CreateStaff adds a staff account to the admin's business.
func (c *Client) CreateStaff(ctx context.Context, staff NewStaff) (*StaffMember, error) {
	staff.FirstName = strings.TrimSpace(staff.FirstName)
	staff.LastName = strings.TrimSpace(staff.LastName)
	staff.Email = strings.TrimSpace(staff.Email)
	if err := validate.Struct(staff); err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}
	var payload StaffMember
	if err := c.do(ctx, "POST", "/staff/create", staff, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
