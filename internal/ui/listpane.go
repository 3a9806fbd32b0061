package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/retriever/internal/lists"
)

// renderList renders the current list's page, pagination and, when toggled,
// the detail pane for the selected row.
func (m Model) renderList(height int) string {
	l := m.current()
	if l == nil {
		return lipgloss.NewStyle().Height(height).Render("")
	}
	snap := l.Snapshot()

	if !m.showDetail {
		return m.renderBox(m.listTitle(snap), m.renderTable(snap, m.width-4), m.width, height, true)
	}

	if m.width >= LayoutSplitWidth {
		tableWidth := m.width * 3 / 5
		detailWidth := m.width - tableWidth
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderBox(m.listTitle(snap), m.renderTable(snap, tableWidth-4), tableWidth, height, false),
			m.renderBox("Details", m.renderDetail(l, detailWidth-4), detailWidth, height, true),
		)
	}

	tableHeight := max(3, height/2)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderBox(m.listTitle(snap), m.renderTable(snap, m.width-4), m.width, tableHeight, false),
		m.renderBox("Details", m.renderDetail(l, m.width-4), m.width, height-tableHeight, true),
	)
}

func (m Model) listTitle(snap lists.Snapshot) string {
	title := snap.Title
	if snap.Facet != "" && snap.Facet != "ALL" {
		title += " · " + snap.Facet
	}
	if snap.Query != "" {
		title += fmt.Sprintf(" · /%s", truncate(snap.Query, 20))
	}
	return title
}

// renderTable paints the visible page. Rows come from the controller's last
// render, never from the raw collection.
func (m Model) renderTable(snap lists.Snapshot, width int) string {
	styles := m.theme.Styles()

	switch {
	case snap.Err != nil && !snap.Loaded:
		return styles.DangerText.Render("Could not load "+strings.ToLower(snap.Title)) + "\n" +
			styles.MutedText.Render(truncate(snap.Err.Error(), width)) + "\n\n" +
			styles.FaintText.Render("Press R to retry.")
	case !snap.Loaded:
		return m.spinner.View() + " " + styles.MutedText.Render("Loading "+strings.ToLower(snap.Title)+"...")
	case snap.Empty():
		msg := styles.MutedText.Render(fmt.Sprintf("No %s found.", strings.ToLower(snap.Title)))
		if snap.Query != "" || (snap.Facet != "" && snap.Facet != "ALL") {
			msg += "\n" + styles.FaintText.Render("Press esc to clear the search or f to change the filter.")
		}
		return msg + "\n\n" + m.renderPager(snap)
	}

	widths := columnWidths(snap.Columns, width)
	var b strings.Builder
	header := make([]string, len(snap.Columns))
	for i, c := range snap.Columns {
		header[i] = fitCell(c.Title, widths[i])
	}
	b.WriteString(styles.AccentText.Bold(true).Render(strings.Join(header, " ")))
	b.WriteString("\n")

	for r, row := range snap.Rows {
		cells := make([]string, len(widths))
		for i := range widths {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			cells[i] = fitCell(value, widths[i])
		}
		line := strings.Join(cells, " ")
		if r == m.selectedRow {
			b.WriteString(styles.Selected.Render(padRight(line, width)))
		} else {
			b.WriteString(m.styleRow(line, row, snap.Columns, styles))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderPager(snap))
	return b.String()
}

// styleRow colors the Status column of an unselected row.
func (m Model) styleRow(line string, row []string, cols []lists.Column, styles Styles) string {
	for i, c := range cols {
		if c.Title != "Status" || i >= len(row) {
			continue
		}
		color := styles.StatusColor(row[i])
		return styles.Text.Render(strings.Replace(line, row[i],
			lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(row[i]), 1))
	}
	return styles.Text.Render(line)
}

func (m Model) renderPager(snap lists.Snapshot) string {
	styles := m.theme.Styles()
	pager := m.pager
	pager.TotalPages = max(1, snap.Meta.TotalPages)
	pager.Page = max(0, snap.Meta.Page-1)
	pager.ActiveDot = styles.AccentText.Render("•")
	pager.InactiveDot = styles.FaintText.Render("•")
	return pager.View() + "  " + styles.MutedText.Render(snap.Meta.Summary())
}

// renderDetail lists every field of the selected record and the actions it
// offers.
func (m Model) renderDetail(l lists.List, width int) string {
	styles := m.theme.Styles()
	fields, ok := l.Detail(m.selectedRow)
	if !ok {
		return styles.MutedText.Render("Nothing selected.")
	}

	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.Label))
	}
	valueWidth := max(10, width-labelWidth-2)

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(styles.MutedText.Render(padRight(f.Label, labelWidth)))
		b.WriteString("  ")
		value := f.Value
		if f.Label == "Status" {
			b.WriteString(styles.StatusStyle(value).Render(value))
		} else {
			b.WriteString(styles.Text.Render(lipgloss.NewStyle().Width(valueWidth).Render(value)))
		}
		b.WriteString("\n")
	}

	if actions := l.Actions(m.selectedRow); len(actions) > 0 {
		b.WriteString("\n")
		for _, a := range actions {
			b.WriteString(styles.WarningText.Render("["+a.Key+"]"))
			b.WriteString(" ")
			b.WriteString(styles.Text.Render(a.Label))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderBox draws a bordered pane with a title line.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	styles := m.theme.Styles()
	body := styles.AccentText.Bold(true).Render(title) + "\n" + content
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(max(4, width-2)).
		Height(max(1, height-2)).
		MaxHeight(max(3, height)).
		Render(body)
}

// columnWidths scales the preferred widths down to fit total, keeping at
// least three columns of each.
func columnWidths(cols []lists.Column, total int) []int {
	widths := make([]int, len(cols))
	want := 0
	for i, c := range cols {
		widths[i] = max(3, c.Width)
		want += widths[i]
	}
	avail := total - (len(cols) - 1)
	if want <= avail || want == 0 {
		return widths
	}
	for i := range widths {
		widths[i] = max(3, widths[i]*avail/want)
	}
	return widths
}
