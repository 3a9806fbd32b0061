package lists

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/retriever/internal/backend"
	"github.com/five82/retriever/internal/listview"
	"github.com/five82/retriever/internal/visualsearch"
)

func itemsDef() definition[backend.Item] {
	return definition[backend.Item]{
		kind:     Items,
		title:    "Items",
		pageSize: 5,
		facets:   []string{backend.StatusLost, backend.StatusFound, backend.StatusMatched, backend.StatusReclaimed},
		columns: []Column{
			{Title: "ID", Width: 6}, {Title: "Name", Width: 24}, {Title: "Category", Width: 14},
			{Title: "Location", Width: 18}, {Title: "Status", Width: 10}, {Title: "Reported", Width: 10},
		},
		fetch: func(ctx context.Context, api API) ([]backend.Item, error) { return api.MyItems(ctx) },
		predicate: func(it backend.Item, query, facet string) bool {
			return listview.ContainsFold(query, it.Name, it.Description, it.Brand, it.Color, id(it.ItemID)) &&
				listview.MatchFacet(facet, it.Status)
		},
		key: func(it backend.Item) string { return id(it.ItemID) },
		row: func(it backend.Item) []string {
			return []string{id(it.ItemID), it.DisplayName(), it.DisplayCategory(), it.DisplayLocation(), strings.ToUpper(it.Status), day(it.ParsedCreatedAt())}
		},
		detail: ItemFields,
		actions: []actionDef[backend.Item]{
			{
				Action: Action{Key: "n", Label: "New report", Global: true},
				form: func(backend.Item) []FormField {
					return append(reportFields(backend.Item{}),
						FormField{Name: "image", Label: "Image file", Hint: "optional path to a photo"})
				},
				submit: submitReport,
			},
			{
				Action:  Action{Key: "u", Label: "Edit report"},
				allowed: func(_ *backend.User, it backend.Item) bool { return editable(it) },
				form:    reportFields,
				submit: func(ctx context.Context, api API, it backend.Item, v map[string]string) error {
					_, err := api.UpdateItem(ctx, it.ItemID, backend.ItemUpdate{
						ItemType:     ptr(v["item_type"]),
						Brand:        ptr(v["brand"]),
						Color:        ptr(v["color"]),
						Description:  ptr(v["description"]),
						LostLocation: ptr(v["location"]),
					})
					return err
				},
			},
			{
				Action: Action{Key: "d", Label: "Delete item", Confirm: true},
				run: func(ctx context.Context, api API, it backend.Item) error {
					return api.DeleteItem(ctx, it.ItemID)
				},
			},
		},
	}
}

// editable reports whether a report can still change. The server refuses
// edits once a match exists.
func editable(it backend.Item) bool {
	return it.Status != backend.StatusMatched && it.Status != backend.StatusReclaimed
}

func reportFields(it backend.Item) []FormField {
	return []FormField{
		{Name: "item_type", Label: "Item type", Value: it.ItemType, Required: true},
		{Name: "brand", Label: "Brand", Value: it.Brand},
		{Name: "color", Label: "Color", Value: it.Color},
		{Name: "description", Label: "Description", Value: it.Description, Required: true},
		{Name: "location", Label: "Location", Value: it.LostLocation, Required: true},
	}
}

func submitReport(ctx context.Context, api API, _ backend.Item, v map[string]string) error {
	report := backend.ItemReport{
		ItemType:    v["item_type"],
		Brand:       v["brand"],
		Color:       v["color"],
		Description: v["description"],
		Location:    v["location"],
	}
	if path := v["image"]; path != "" {
		file, err := visualsearch.FileFromPath(path)
		if err != nil {
			return err
		}
		if !file.IsImage() {
			return fmt.Errorf("%w: %s", visualsearch.ErrNotImage, file.Name)
		}
		report.ImageName, report.ImageType, report.Image = file.Name, file.MIME, file.Data
	}
	_, err := api.ReportItem(ctx, report)
	return err
}

// ItemFields is the detail view of a report.
func ItemFields(it backend.Item) []Field {
	return []Field{
		{"ID", id(it.ItemID)},
		{"Name", it.DisplayName()},
		{"Category", it.DisplayCategory()},
		{"Brand", dash(it.Brand)},
		{"Color", dash(it.Color)},
		{"Location", it.DisplayLocation()},
		{"Status", strings.ToUpper(dash(it.Status))},
		{"Description", orDefault(it.Description, "No description")},
		{"Reported", stamp(it.ParsedCreatedAt())},
	}
}

// MatchStatus returns the upper-cased status, PENDING when blank.
func MatchStatus(m backend.Match) string {
	status := strings.ToUpper(strings.TrimSpace(m.Status))
	if status == "" {
		return backend.MatchPending
	}
	return status
}

func matchPredicate(m backend.Match, query, facet string) bool {
	var lostType, foundType string
	if m.Lost != nil {
		lostType = m.Lost.ItemType
	}
	if m.Found != nil {
		foundType = m.Found.ItemType
	}
	return listview.ContainsFold(query, m.LostName(), m.FoundName(), lostType, foundType, id(m.MatchID)) &&
		listview.MatchFacet(facet, MatchStatus(m))
}

var matchColumns = []Column{
	{Title: "ID", Width: 6}, {Title: "Lost", Width: 22}, {Title: "Found", Width: 22},
	{Title: "Score", Width: 6}, {Title: "Status", Width: 10},
}

func matchRow(m backend.Match) []string {
	return []string{id(m.MatchID), m.LostName(), m.FoundName(), m.ScorePercent(), MatchStatus(m)}
}

func matchKey(m backend.Match) string { return id(m.MatchID) }

func matchFields(m backend.Match) []Field {
	fields := []Field{
		{"Match", id(m.MatchID)},
		{"Status", MatchStatus(m)},
		{"Similarity", m.ScorePercent()},
		{"Created", stamp(m.ParsedCreatedAt())},
	}
	if m.Lost != nil {
		fields = append(fields,
			Field{"Lost item", m.Lost.DisplayName()},
			Field{"Lost at", m.Lost.DisplayLocation()},
		)
	}
	if m.Found != nil {
		fields = append(fields,
			Field{"Found item", m.Found.DisplayName()},
			Field{"Found at", m.Found.DisplayLocation()},
		)
	}
	return fields
}

func matchesDef() definition[backend.Match] {
	pendingAdmin := func(u *backend.User, m backend.Match) bool {
		return (u == nil || u.IsAdmin()) && MatchStatus(m) == backend.MatchPending
	}
	return definition[backend.Match]{
		kind:      Matches,
		title:     "AI Matches",
		pageSize:  6,
		facets:    []string{backend.MatchPending, backend.MatchApproved, backend.MatchRejected, backend.StatusReclaimed},
		columns:   matchColumns,
		fetch:     func(ctx context.Context, api API) ([]backend.Match, error) { return api.Matches(ctx) },
		predicate: matchPredicate,
		key:       matchKey,
		row:       matchRow,
		detail:    matchFields,
		actions: []actionDef[backend.Match]{
			{
				Action:  Action{Key: "a", Label: "Approve match"},
				allowed: pendingAdmin,
				run: func(ctx context.Context, api API, m backend.Match) error {
					return api.ApproveMatch(ctx, m.MatchID)
				},
			},
			{
				Action:  Action{Key: "x", Label: "Reject match", Confirm: true},
				allowed: pendingAdmin,
				run: func(ctx context.Context, api API, m backend.Match) error {
					return api.RejectMatch(ctx, m.MatchID)
				},
			},
		},
	}
}

func approvedDef() definition[backend.Match] {
	return definition[backend.Match]{
		kind:      Approved,
		title:     "Approved",
		pageSize:  6,
		facets:    []string{backend.MatchApproved, backend.StatusReclaimed},
		columns:   matchColumns,
		fetch:     func(ctx context.Context, api API) ([]backend.Match, error) { return api.ApprovedMatches(ctx) },
		predicate: matchPredicate,
		key:       matchKey,
		row:       matchRow,
		detail:    matchFields,
		actions: []actionDef[backend.Match]{{
			Action: Action{Key: "c", Label: "Claim item", Confirm: true},
			allowed: func(u *backend.User, m backend.Match) bool {
				return (u == nil || u.RoleID == backend.RoleCustomer) && MatchStatus(m) != backend.StatusReclaimed
			},
			run: func(ctx context.Context, api API, m backend.Match) error {
				return api.ClaimItem(ctx, m.MatchID)
			},
		}},
	}
}

func activeFacet(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

func staffDef() definition[backend.StaffMember] {
	return definition[backend.StaffMember]{
		kind:     Staff,
		title:    "Staff",
		pageSize: 5,
		facets:   []string{"ACTIVE", "INACTIVE"},
		columns: []Column{
			{Title: "ID", Width: 6}, {Title: "Name", Width: 24}, {Title: "Email", Width: 28},
			{Title: "Status", Width: 9}, {Title: "Last login", Width: 10},
		},
		fetch: func(ctx context.Context, api API) ([]backend.StaffMember, error) { return api.Staff(ctx) },
		predicate: func(s backend.StaffMember, query, facet string) bool {
			return listview.AnyContainsFold(query, s.FirstName, s.LastName, s.Email) &&
				listview.MatchFacet(facet, activeFacet(s.IsActive))
		},
		key: func(s backend.StaffMember) string { return id(s.UserID) },
		row: func(s backend.StaffMember) []string {
			return []string{id(s.UserID), s.FullName(), s.Email, activeFacet(s.IsActive), day(backend.ParseTime(s.LastLogin))}
		},
		detail: func(s backend.StaffMember) []Field {
			return []Field{
				{"ID", id(s.UserID)},
				{"Name", s.FullName()},
				{"Email", s.Email},
				{"Status", activeFacet(s.IsActive)},
				{"Last login", stamp(backend.ParseTime(s.LastLogin))},
			}
		},
		actions: []actionDef[backend.StaffMember]{
			{
				Action:  Action{Key: "n", Label: "New staff", Global: true},
				allowed: func(u *backend.User, _ backend.StaffMember) bool { return u == nil || u.IsAdmin() },
				form: func(backend.StaffMember) []FormField {
					return []FormField{
						{Name: "first_name", Label: "First name", Required: true},
						{Name: "last_name", Label: "Last name"},
						{Name: "email", Label: "Email", Required: true},
						{Name: "password", Label: "Password", Required: true, Secret: true, Hint: "at least 8 characters"},
					}
				},
				submit: func(ctx context.Context, api API, _ backend.StaffMember, v map[string]string) error {
					_, err := api.CreateStaff(ctx, backend.NewStaff{
						FirstName: v["first_name"],
						LastName:  v["last_name"],
						Email:     v["email"],
						Password:  v["password"],
					})
					return err
				},
			},
			{
				Action: Action{Key: "t", Label: "Toggle active"},
				run: func(ctx context.Context, api API, s backend.StaffMember) error {
					return api.SetStaffActive(ctx, s.UserID, !s.IsActive)
				},
			},
		},
	}
}

func usersDef() definition[backend.Customer] {
	return definition[backend.Customer]{
		kind:     Users,
		title:    "Users",
		pageSize: 5,
		facets:   []string{"ACTIVE", "INACTIVE"},
		columns: []Column{
			{Title: "ID", Width: 6}, {Title: "Name", Width: 20}, {Title: "Email", Width: 28},
			{Title: "Reports", Width: 7}, {Title: "Status", Width: 9},
		},
		fetch: func(ctx context.Context, api API) ([]backend.Customer, error) { return api.Customers(ctx) },
		predicate: func(c backend.Customer, query, facet string) bool {
			return listview.AnyContainsFold(query, c.FirstName, c.Email) &&
				listview.MatchFacet(facet, activeFacet(c.IsActive()))
		},
		key: func(c backend.Customer) string { return id(c.UserID) },
		row: func(c backend.Customer) []string {
			return []string{id(c.UserID), dash(c.FirstName), c.Email, strconv.Itoa(c.ItemsReported), activeFacet(c.IsActive())}
		},
		detail: func(c backend.Customer) []Field {
			return []Field{
				{"ID", id(c.UserID)},
				{"Name", dash(c.FirstName)},
				{"Email", c.Email},
				{"Items reported", strconv.Itoa(c.ItemsReported)},
				{"Status", activeFacet(c.IsActive())},
				{"Last active", stamp(backend.ParseTime(c.LastActive))},
			}
		},
		actions: []actionDef[backend.Customer]{
			{
				Action: Action{Key: "t", Label: "Toggle status"},
				run: func(ctx context.Context, api API, c backend.Customer) error {
					return api.ToggleCustomerStatus(ctx, c.UserID)
				},
			},
			{
				Action: Action{Key: "d", Label: "Delete user", Confirm: true},
				run: func(ctx context.Context, api API, c backend.Customer) error {
					return api.DeleteCustomer(ctx, c.UserID)
				},
			},
		},
	}
}

func notificationsDef() definition[backend.Notification] {
	return definition[backend.Notification]{
		kind:     Notifications,
		title:    "Notifications",
		pageSize: 6,
		facets:   []string{"UNREAD", "MATCH", "SYSTEM"},
		columns: []Column{
			{Title: "", Width: 1}, {Title: "Title", Width: 30}, {Title: "Type", Width: 8}, {Title: "When", Width: 16},
		},
		fetch: func(ctx context.Context, api API) ([]backend.Notification, error) { return api.Notifications(ctx) },
		predicate: func(n backend.Notification, query, facet string) bool {
			return listview.AnyContainsFold(query, n.Title, n.Message) && notificationFacet(n, facet)
		},
		key: func(n backend.Notification) string { return id(n.NotificationID) },
		row: func(n backend.Notification) []string {
			dot := ""
			if !n.IsRead {
				dot = "●"
			}
			return []string{dot, n.Title, string(DetectType(n.Title)), stamp(n.ParsedCreatedAt())}
		},
		detail: func(n backend.Notification) []Field {
			fields := []Field{
				{"Title", n.Title},
				{"Message", n.Message},
				{"Type", string(DetectType(n.Title))},
				{"Read", strconv.FormatBool(n.IsRead)},
				{"Received", stamp(n.ParsedCreatedAt())},
			}
			if n.MatchID != nil {
				fields = append(fields, Field{"Match", id(*n.MatchID)})
			}
			return fields
		},
		actions: []actionDef[backend.Notification]{
			{
				Action:  Action{Key: "r", Label: "Mark read"},
				allowed: func(_ *backend.User, n backend.Notification) bool { return !n.IsRead },
				run: func(ctx context.Context, api API, n backend.Notification) error {
					return api.MarkNotificationRead(ctx, n.NotificationID)
				},
			},
			{
				Action: Action{Key: "A", Label: "Mark all read", Global: true},
				run: func(ctx context.Context, api API, _ backend.Notification) error {
					return api.MarkAllNotificationsRead(ctx)
				},
			},
		},
	}
}

func notificationFacet(n backend.Notification, facet string) bool {
	switch facet {
	case "", listview.FacetAll:
		return true
	case "UNREAD":
		return !n.IsRead
	case "MATCH":
		return DetectType(n.Title) == TypeMatch
	case "SYSTEM":
		return DetectType(n.Title) != TypeMatch
	default:
		return false
	}
}

func ptr(s string) *string { return &s }

func id(v int64) string { return strconv.FormatInt(v, 10) }

func dash(s string) string { return orDefault(s, "-") }

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
