package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/five82/retriever/internal/visualsearch"
)

type searchDoneMsg struct {
	flow *visualsearch.Flow
	err  error
}

// searchModal drives a visualsearch.Flow from the keyboard. Flow callbacks
// run on the search goroutine, so the fields they touch sit behind mu.
type searchModal struct {
	ctx     context.Context
	flow    *visualsearch.Flow
	input   textinput.Model
	spinner spinner.Model
	cursor  int

	mu         sync.Mutex
	notice     string
	noticeErr  bool
	submitting bool
}

func newSearchModal(ctx context.Context, searcher visualsearch.Searcher, baseURL string, logger *log.Logger) (*searchModal, error) {
	ti := textinput.New()
	ti.Prompt = "Image: "
	ti.Placeholder = "~/Pictures/photo.jpg"
	ti.CharLimit = 512
	ti.Width = 48
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	s := &searchModal{ctx: ctx, input: ti, spinner: sp}
	flow, err := visualsearch.New(visualsearch.Config{
		Searcher: searcher,
		BaseURL:  baseURL,
		Logger:   logger,
		OnStaged: func(visualsearch.File) { s.setNotice("", false) },
		OnResults: func([]visualsearch.MatchResult) {
			s.setNotice("", false)
		},
		OnEmpty: func() { s.setNotice("No matching items found.", false) },
		OnError: func(err error) { s.setNotice("Search failed: "+err.Error(), true) },
		OnReset: func() { s.setNotice("", false) },
	})
	if err != nil {
		return nil, err
	}
	s.flow = flow
	return s, nil
}

func (s *searchModal) setNotice(text string, isErr bool) {
	s.mu.Lock()
	s.notice = text
	s.noticeErr = isErr
	s.mu.Unlock()
}

func (s *searchModal) state() (notice string, isErr, submitting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice, s.noticeErr, s.submitting
}

func (s *searchModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		if msg.flow != s.flow {
			return s, nil, false
		}
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		s.cursor = 0
		return s, nil, false

	case spinner.TickMsg:
		if _, _, submitting := s.state(); !submitting {
			return s, nil, false
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd, false

	case tea.KeyMsg:
		return s.handleKey(msg, keys)
	}
	return s, nil, false
}

func (s *searchModal) handleKey(msg tea.KeyMsg, keys keyMap) (Modal, tea.Cmd, bool) {
	if s.input.Focused() {
		return s.handleInputKey(msg, keys)
	}

	if key.Matches(msg, keys.ResetSearch) {
		s.flow.ResetAll()
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		s.cursor = 0
		s.input.SetValue("")
		return s, s.input.Focus(), false
	}

	if _, _, submitting := s.state(); submitting {
		if key.Matches(msg, keys.Escape) {
			s.flow.ResetAll()
			return s, nil, true
		}
		return s, nil, false
	}

	session := s.flow.Snapshot()
	switch session.Status {
	case visualsearch.FileStaged:
		switch {
		case key.Matches(msg, keys.Confirm):
			return s, s.submit(), false
		case key.Matches(msg, keys.ChooseFile):
			s.input.SetValue("")
			return s, s.input.Focus(), false
		case key.Matches(msg, keys.RemoveFile):
			_ = s.flow.RemoveFile()
			s.input.SetValue("")
			return s, s.input.Focus(), false
		}

	case visualsearch.ResultsReady:
		switch {
		case key.Matches(msg, keys.Down):
			if s.cursor < len(session.Results)-1 {
				s.cursor++
			}
		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keys.Confirm):
			if err := s.flow.SelectResult(s.cursor); err != nil && !errors.Is(err, visualsearch.ErrNoResult) {
				s.setNotice(err.Error(), true)
			}
		case key.Matches(msg, keys.ChooseFile):
			s.input.SetValue("")
			return s, s.input.Focus(), false
		}

	case visualsearch.DetailOpen:
		if key.Matches(msg, keys.Escape) {
			_ = s.flow.CloseDetail()
		}
		return s, nil, false
	}

	if key.Matches(msg, keys.Escape) {
		s.flow.ResetAll()
		return s, nil, true
	}
	return s, nil, false
}

// handleInputKey edits the image path. Enter stages the file.
func (s *searchModal) handleInputKey(msg tea.KeyMsg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Escape):
		if s.flow.Status() == visualsearch.Idle {
			s.flow.ResetAll()
			return s, nil, true
		}
		s.input.Blur()
		return s, nil, false

	case key.Matches(msg, keys.Confirm):
		s.stage(strings.TrimSpace(s.input.Value()))
		return s, nil, false
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, false
}

func (s *searchModal) stage(path string) {
	if path == "" {
		s.setNotice("Enter the path of an image file.", true)
		return
	}
	file, err := visualsearch.FileFromPath(expandHome(path))
	if err != nil {
		s.setNotice(err.Error(), true)
		return
	}
	if err := s.flow.SelectFile(file); err != nil {
		if errors.Is(err, visualsearch.ErrNotImage) {
			s.setNotice("Only image files can be searched.", true)
			return
		}
		s.setNotice(err.Error(), true)
		return
	}
	s.cursor = 0
	s.input.Blur()
}

func (s *searchModal) submit() tea.Cmd {
	s.mu.Lock()
	s.submitting = true
	s.notice = ""
	s.mu.Unlock()

	flow, ctx := s.flow, s.ctx
	search := func() tea.Msg {
		return searchDoneMsg{flow: flow, err: flow.Submit(ctx)}
	}
	return tea.Batch(search, s.spinner.Tick)
}

func (s *searchModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	session := s.flow.Snapshot()
	notice, noticeErr, submitting := s.state()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Visual Search"))
	b.WriteString("\n\n")

	var hints []string
	switch {
	case submitting || session.Status == visualsearch.Searching:
		name := ""
		if session.File != nil {
			name = session.File.Name
		}
		b.WriteString(s.spinner.View() + " " + styles.Text.Render("Searching for items like "+name+"..."))
		hints = []string{"esc cancel"}

	case session.Status == visualsearch.DetailOpen && session.Selected != nil:
		b.WriteString(renderMatchDetail(*session.Selected, styles))
		hints = []string{"esc back to results"}

	case session.Status == visualsearch.ResultsReady:
		for i, r := range session.Results {
			b.WriteString(renderMatchRow(r, i == s.cursor, styles))
			b.WriteString("\n")
		}
		hints = []string{"j/k move", "enter details", "o new image", "ctrl+r start over", "esc close"}

	case session.Status == visualsearch.FileStaged && session.File != nil:
		f := session.File
		b.WriteString(styles.MutedText.Render("Staged  "))
		b.WriteString(styles.Text.Bold(true).Render(truncateMiddle(f.Name, 40)))
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("  %s, %s", f.MIME, humanSize(f.Size()))))
		hints = []string{"enter search", "o other image", "x remove", "esc close"}

	default:
		b.WriteString(styles.Text.Render("Find your item by uploading a photo of it."))
		hints = []string{"enter stage image", "esc close"}
	}

	if s.input.Focused() {
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
		hints = []string{"enter stage image", "esc cancel"}
	}

	if notice != "" {
		style := styles.WarningText
		if noticeErr {
			style = styles.DangerText
		}
		b.WriteString("\n\n")
		b.WriteString(style.Render(notice))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render(strings.Join(hints, " · ")))
	return placeModal(theme, width, height, 72, b.String())
}

func renderMatchRow(r visualsearch.MatchResult, selected bool, styles Styles) string {
	marker := "  "
	if selected {
		marker = styles.AccentText.Render("› ")
	}
	badge := styles.StatusStyle(r.Tier().String()).Render(r.Badge())
	name := styles.Text.Bold(true).Render(truncate(r.Name, 28))
	if selected {
		name = styles.Selected.Bold(true).Render(truncate(r.Name, 28))
	}
	return marker + badge + " " + name + "  " + styles.MutedText.Render(truncate(r.Location, 24))
}

func renderMatchDetail(r visualsearch.MatchResult, styles Styles) string {
	image := styles.FaintText.Render("(no image)")
	if r.HasImage() {
		image = styles.InfoText.Render(r.ImageURL)
	}
	rows := []struct{ label, value string }{
		{"Location", r.Location},
		{"Description", r.Description},
		{"Score", fmt.Sprintf("%.2f (%s confidence)", r.RawScore, r.Tier())},
	}
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(r.Name))
	b.WriteString("  ")
	b.WriteString(styles.StatusStyle(r.Tier().String()).Render(r.Badge()))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(styles.MutedText.Render(padRight(row.label, 12)))
		b.WriteString(lipgloss.NewStyle().Width(52).Render(styles.Text.Render(row.value)))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedText.Render(padRight("Image", 12)))
	b.WriteString(image)
	return b.String()
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
