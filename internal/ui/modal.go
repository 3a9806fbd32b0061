package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal closed.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks a yes/no question before a destructive action.
type confirmModal struct {
	prompt string
	onYes  tea.Cmd
}

func newConfirmModal(prompt string, onYes tea.Cmd) *confirmModal {
	return &confirmModal{prompt: prompt, onYes: onYes}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Accept):
		return c, c.onYes, true
	case key.Matches(km, keys.Decline):
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Bold(true).Render(c.prompt) + "\n\n" +
		styles.WarningText.Render("y") + styles.MutedText.Render(" confirm   ") +
		styles.WarningText.Render("n") + styles.MutedText.Render(" cancel")
	return placeModal(theme, width, height, 48, body)
}

// placeModal centers a bordered box on the screen.
func placeModal(theme Theme, width, height, boxWidth int, body string) string {
	if width > 0 && boxWidth > width-2 {
		boxWidth = width - 2
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(boxWidth).
		Render(body)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
