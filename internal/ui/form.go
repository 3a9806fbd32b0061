package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/retriever/internal/lists"
)

// formModal collects the fields of a form action. Enter moves to the next
// field and submits from the last one; ctrl+s submits from anywhere.
type formModal struct {
	title    string
	fields   []lists.FormField
	inputs   []textinput.Model
	focus    int
	notice   string
	onSubmit func(values map[string]string) tea.Cmd
}

func newFormModal(title string, fields []lists.FormField, onSubmit func(map[string]string) tea.Cmd) *formModal {
	f := &formModal{title: title, fields: fields, onSubmit: onSubmit}
	labelWidth := 0
	for _, field := range fields {
		labelWidth = max(labelWidth, len(field.Label))
	}
	for _, field := range fields {
		ti := textinput.New()
		ti.Prompt = padRight(field.Label, labelWidth) + "  "
		ti.Placeholder = field.Hint
		ti.CharLimit = 512
		ti.Width = 40
		ti.SetValue(field.Value)
		if field.Secret {
			ti.EchoMode = textinput.EchoPassword
		}
		f.inputs = append(f.inputs, ti)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape):
		return f, nil, true
	case key.Matches(km, keys.Submit):
		return f.submit()
	case key.Matches(km, keys.Confirm):
		if f.focus == len(f.inputs)-1 {
			return f.submit()
		}
		return f, f.moveFocus(1), false
	case key.Matches(km, keys.NextField):
		return f, f.moveFocus(1), false
	case key.Matches(km, keys.PrevField):
		return f, f.moveFocus(-1), false
	}
	if len(f.inputs) == 0 {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(km)
	return f, cmd, false
}

func (f *formModal) moveFocus(delta int) tea.Cmd {
	n := len(f.inputs)
	if n == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = ((f.focus+delta)%n + n) % n
	return f.inputs[f.focus].Focus()
}

// submit closes the form unless a required field is blank, in which case
// that field takes focus.
func (f *formModal) submit() (Modal, tea.Cmd, bool) {
	values := make(map[string]string, len(f.fields))
	for i, field := range f.fields {
		v := strings.TrimSpace(f.inputs[i].Value())
		if field.Required && v == "" {
			f.notice = field.Label + " is required."
			return f, f.moveFocus(i - f.focus), false
		}
		if field.Name == "image" {
			v = expandHome(v)
		}
		values[field.Name] = v
	}
	return f, f.onSubmit(values), true
}

func (f *formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(f.title))
	b.WriteString("\n\n")
	for i, field := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = styles.AccentText.Render("› ")
		}
		b.WriteString(marker + f.inputs[i].View())
		if field.Required {
			b.WriteString(styles.WarningText.Render(" *"))
		}
		b.WriteString("\n")
	}
	if f.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(f.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Join([]string{"tab next", "enter next/submit", "ctrl+s submit", "esc cancel"}, " · ")))
	return placeModal(theme, width, height, 72, b.String())
}
