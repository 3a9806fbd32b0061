package backend

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// User mirrors /users/me.
type User struct {
	UserID     int64  `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	BusinessID *int64 `json:"business_id"`
	RoleID     int    `json:"role_id"`
}

// DisplayName returns "First Last" or the email when no name is set.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// IsAdmin reports whether the user holds the business admin role.
func (u User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// Role identifiers used by the backend.
const (
	RoleSuperAdmin = 1
	RoleAdmin      = 2
	RoleStaff      = 3
	RoleCustomer   = 4
)

// Item statuses.
const (
	StatusLost      = "LOST"
	StatusFound     = "FOUND"
	StatusMatched   = "MATCHED"
	StatusReclaimed = "RECLAIMED"
)

// Match statuses.
const (
	MatchPending  = "PENDING"
	MatchApproved = "APPROVED"
	MatchRejected = "REJECTED"
)

// Item is a reported lost or found item.
type Item struct {
	ItemID        int64    `json:"item_id"`
	UserID        *int64   `json:"user_id"`
	BusinessID    *int64   `json:"business_id"`
	Name          string   `json:"name"`
	ItemType      string   `json:"item_type"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand"`
	Color         string   `json:"color"`
	Description   string   `json:"description"`
	ImagePath     string   `json:"image_path"`
	Status        string   `json:"status"`
	LostLocation  string   `json:"lost_location"`
	Location      string   `json:"location"`
	LocationFound string   `json:"location_found"`
	AIMatchScore  *float64 `json:"ai_match_score"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// DisplayName falls back to "color brand type" and then "Unnamed Item".
func (i Item) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	composed := strings.Join(strings.Fields(i.Color+" "+i.Brand+" "+i.ItemType), " ")
	if composed != "" {
		return composed
	}
	return "Unnamed Item"
}

// DisplayCategory returns the category, the item type or "General".
func (i Item) DisplayCategory() string {
	return firstNonEmpty(i.Category, i.ItemType, "General")
}

// DisplayLocation returns the best known location or "Unknown".
func (i Item) DisplayLocation() string {
	return firstNonEmpty(i.LostLocation, i.Location, i.LocationFound, "Unknown")
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (i Item) ParsedCreatedAt() time.Time {
	return ParseTime(i.CreatedAt)
}

// Match links a lost item to a found item.
type Match struct {
	MatchID         int64   `json:"match_id"`
	SimilarityScore float64 `json:"similarity_score"`
	Status          string  `json:"status"`
	Lost            *Item   `json:"lost"`
	Found           *Item   `json:"found"`
	CreatedAt       string  `json:"created_at"`
}

// LostName returns the lost item's display name.
func (m Match) LostName() string {
	if m.Lost == nil {
		return "Unknown"
	}
	return m.Lost.DisplayName()
}

// FoundName returns the found item's display name.
func (m Match) FoundName() string {
	if m.Found == nil {
		return "Unknown"
	}
	return m.Found.DisplayName()
}

// ScorePercent renders the similarity score as a whole percentage.
func (m Match) ScorePercent() string {
	return strconv.Itoa(int(m.SimilarityScore*100+0.5)) + "%"
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (m Match) ParsedCreatedAt() time.Time {
	return ParseTime(m.CreatedAt)
}

// StaffMember is a staff account of the current business.
type StaffMember struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	LastLogin string `json:"last_login"`
}

// FullName joins first and last name.
func (s StaffMember) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Customer is an end-user account of the current business.
type Customer struct {
	UserID        int64  `json:"user_id"`
	FirstName     string `json:"first_name"`
	Email         string `json:"email"`
	ItemsReported int    `json:"items_reported"`
	LastActive    string `json:"last_active"`
	Status        string `json:"status"`
}

// IsActive reports whether the customer status is "active" in any case.
func (c Customer) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), "active")
}

// Notification is an in-app notification.
type Notification struct {
	NotificationID   int64  `json:"notification_id"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	IsRead           bool   `json:"is_read"`
	MatchID          *int64 `json:"match_id"`
	NotificationType string `json:"notification_type"`
	CreatedAt        string `json:"created_at"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (n Notification) ParsedCreatedAt() time.Time {
	return ParseTime(n.CreatedAt)
}

// VisualMatch is one hit from /matches/search-by-image.
type VisualMatch struct {
	Name            string     `json:"name"`
	Location        string     `json:"location"`
	Description     string     `json:"description"`
	MatchConfidence FlexString `json:"match_confidence"`
	RawScore        FlexFloat  `json:"raw_score"`
	ImageURL        string     `json:"image_url"`
	ImagePath       string     `json:"image_path"`
}

// SearchResponse mirrors /matches/search-by-image.
type SearchResponse struct {
	Message string        `json:"message"`
	Matches []VisualMatch `json:"matches"`
}

// FlexFloat decodes a JSON number or a numeric string.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexFloat(num)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "%")
	if text == "" {
		*f = 0
		return nil
	}
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(num)
	return nil
}

// FlexString decodes a JSON string or number into its text form.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = FlexString(text)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ParseTime parses the backend's timestamp formats, returning the zero time
// for empty or unrecognised input.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
