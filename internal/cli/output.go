package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/retriever/internal/lists"
	"github.com/five82/retriever/internal/visualsearch"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true)
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
)

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// PageFooter formats "Page X of Y (showing a-b of n)".
func PageFooter(snap lists.Snapshot) string {
	return snap.Meta.Summary()
}

func writeSnapshot(w io.Writer, snap lists.Snapshot) {
	if snap.Empty() {
		fmt.Fprintf(w, "No %s found.\n", strings.ToLower(snap.Title))
		fmt.Fprintln(w, PageFooter(snap))
		return
	}
	headers := make([]string, len(snap.Columns))
	for i, c := range snap.Columns {
		headers[i] = c.Title
	}
	fmt.Fprintln(w, newTable(headers, snap.Rows).Render())
	fmt.Fprintln(w, PageFooter(snap))
}

func writeFields(w io.Writer, fields []lists.Field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-*s  %s\n", width, f.Label, f.Value)
	}
}

func writeResults(w io.Writer, results []visualsearch.MatchResult) {
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{fmt.Sprint(i + 1), r.Name, r.Location, tierBadge(r)})
	}
	fmt.Fprintln(w, newTable([]string{"#", "Name", "Location", "Confidence"}, rows).Render())
}

func writeResultDetail(w io.Writer, r visualsearch.MatchResult) {
	image := r.ImageURL
	if image == "" {
		image = "(no image)"
	}
	writeFields(w, []lists.Field{
		{Label: "Name", Value: r.Name},
		{Label: "Location", Value: r.Location},
		{Label: "Description", Value: r.Description},
		{Label: "Confidence", Value: tierBadge(r)},
		{Label: "Tier", Value: r.Tier().String()},
		{Label: "Image", Value: image},
	})
}

func tierBadge(r visualsearch.MatchResult) string {
	if r.Tier() == visualsearch.TierHigh {
		return highStyle.Render(r.Badge())
	}
	return mediumStyle.Render(r.Badge())
}
