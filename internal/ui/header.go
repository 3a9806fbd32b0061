package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/retriever/internal/backend"
	"github.com/five82/retriever/internal/listview"
)

// renderHeader renders the session bar: who is signed in, unread
// notifications and connection health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("retriever", styles.Logo)}

	switch {
	case m.session.IsUnauthorized():
		parts = append(parts, bg.Render("● SIGNED OUT", styles.DangerText))
	case m.session.IsOffline():
		parts = append(parts, bg.Render("● "+classifyConnectionError(m.session.LastError), styles.DangerText))
	case m.session.HasUser:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	}

	if m.session.HasUser {
		u := m.session.User
		parts = append(parts,
			bg.Render(truncate(u.DisplayName(), 28), styles.Text.Bold(true))+bg.Space()+
				bg.Render("("+roleLabel(u.RoleID)+")", styles.MutedText))
	}

	unreadStyle := styles.MutedText
	if m.session.UnreadCount > 0 {
		unreadStyle = styles.WarningText.Bold(true)
	}
	label := "Unread:"
	if compact {
		label = "U:"
	}
	parts = append(parts,
		bg.Render(label, styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", m.session.UnreadCount), unreadStyle))

	if !compact && m.config != nil {
		if u, err := url.Parse(m.config.APIBase); err == nil && u.Host != "" {
			parts = append(parts, bg.Render("api", styles.FaintText)+bg.Space()+bg.Render(u.Host, styles.MutedText))
		}
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.session.LastError != nil && !m.session.IsOffline() {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText)+bg.Space()+
				bg.Render(truncate(m.session.LastError.Error(), maxErr), styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp formats the last poll time with a relative hint.
func (m Model) formatTimestamp() string {
	last := m.session.LastUpdated
	if last.IsZero() {
		return ""
	}
	since := time.Since(last)
	out := last.Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

func roleLabel(role int) string {
	switch role {
	case backend.RoleSuperAdmin:
		return "super admin"
	case backend.RoleAdmin:
		return "admin"
	case backend.RoleStaff:
		return "staff"
	case backend.RoleCustomer:
		return "customer"
	default:
		return "unknown role"
	}
}

// classifyConnectionError returns a short description of a poll failure.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "API ERROR"
	}
}

// renderTabs renders one tab per entity list with its filtered count.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.SurfaceAlt)
	tabs := make([]string, 0, len(m.lists))
	for i, l := range m.lists {
		label := fmt.Sprintf(" %d %s ", i+1, l.Title())
		if snap := l.Snapshot(); snap.Loaded {
			label = fmt.Sprintf(" %d %s (%d) ", i+1, l.Title(), snap.Meta.TotalCount)
		}
		if i == m.active {
			tabs = append(tabs, styles.Selected.Bold(true).Render(label))
			continue
		}
		tabs = append(tabs, bg.Render(label, styles.MutedText))
	}
	return bg.FillLine(strings.Join(tabs, bg.Space()), m.width)
}

// renderCommandBar renders the key hints for the current list.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	facet := listview.FacetAll
	var meta listview.Meta
	if l := m.current(); l != nil {
		snap := l.Snapshot()
		meta = snap.Meta
		if snap.Facet != "" {
			facet = snap.Facet
		}
	}
	commands := []cmd{
		{"/", "Search"},
		{"f", titleWord(facet)},
		{"←/→", "Page"},
		{"j/k", "Move"},
		{"enter", "Details"},
	}
	for _, a := range m.actionsForSelection() {
		commands = append(commands, cmd{a.Key, a.Label})
	}
	commands = append(commands, cmd{"v", "Visual"}, cmd{"R", "Reload"}, cmd{"?", "More"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		keyView := bg.Render(c.key, styles.AccentText)
		if c.key == "←/→" {
			prev, next := pageArrowStyles(meta, styles)
			keyView = bg.Render("←", prev) + bg.Render("/", styles.AccentText) + bg.Render("→", next)
		}
		segments = append(segments, keyView+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// pageArrowStyles dims the page arrows that lead nowhere.
func pageArrowStyles(meta listview.Meta, styles Styles) (prev, next lipgloss.Style) {
	prev, next = styles.FaintText, styles.FaintText
	if meta.HasPrev {
		prev = styles.AccentText
	}
	if meta.HasNext {
		next = styles.AccentText
	}
	return prev, next
}

// renderStatusLine shows the query being typed or the latest notice.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	line := ""
	switch {
	case m.querying:
		line = m.queryInput.View()
	case m.notice != "":
		style := styles.SuccessText
		if m.noticeErr {
			style = styles.DangerText
		}
		line = style.Render(truncate(m.notice, max(10, m.width-2)))
	case m.busy():
		line = m.spinner.View() + " " + styles.MutedText.Render("Working...")
	}
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(line)
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
