package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

func bindingItems(bindings ...key.Binding) []helpItem {
	items := make([]helpItem, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		items = append(items, helpItem{h.Key, h.Desc})
	}
	return items
}

// helpSections lists the global bindings followed by the actions the
// current list offers.
func (m Model) helpSections() []helpSection {
	k := m.keys
	sections := []helpSection{
		{title: "Navigation", items: bindingItems(k.Tab, k.ShiftTab, k.Up, k.Down, k.Top, k.Bottom)},
		{title: "Lists", items: bindingItems(k.Query, k.CycleFacet, k.PrevPage, k.NextPage, k.Refresh, k.ToggleFocus)},
		{title: "Visual search", items: bindingItems(k.Visual, k.ChooseFile, k.RemoveFile, k.ResetSearch)},
		{title: "Forms", items: bindingItems(k.NextField, k.PrevField, k.Submit)},
	}
	if l := m.current(); l != nil {
		var items []helpItem
		for _, a := range m.actionsForSelection() {
			items = append(items, helpItem{a.Key, a.Label})
		}
		if len(items) > 0 {
			sections = append(sections, helpSection{title: l.Title(), items: items})
		}
	}
	sections = append(sections, helpSection{title: "General", items: bindingItems(k.CycleTheme, k.Help, k.Quit)})
	return sections
}

// renderHelp renders the help overlay. Sections are dealt into two columns
// so the overlay fits short terminals.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := styles.WarningText.Width(10)

	section := func(sec helpSection) string {
		lines := []string{styles.AccentText.Bold(true).Render(sec.title)}
		for _, item := range sec.items {
			lines = append(lines, keyStyle.Render(item.key)+styles.Text.Render(item.desc))
		}
		return strings.Join(lines, "\n")
	}

	var left, right []string
	for i, sec := range m.helpSections() {
		if i%2 == 0 {
			left = append(left, section(sec))
		} else {
			right = append(right, section(sec))
		}
	}
	column := lipgloss.NewStyle().Width(34)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		column.Render(strings.Join(left, "\n\n")),
		column.Render(strings.Join(right, "\n\n")),
	)

	title := styles.Text.Bold(true).Render("Keys") + "  " + styles.FaintText.Render("any key closes")
	return placeModal(m.theme, m.width, m.height, 74, title+"\n\n"+body)
}
