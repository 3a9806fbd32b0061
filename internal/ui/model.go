package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/five82/retriever/internal/backend"
	"github.com/five82/retriever/internal/config"
	"github.com/five82/retriever/internal/lists"
	"github.com/five82/retriever/internal/listview"
	"github.com/five82/retriever/internal/prefs"
	"github.com/five82/retriever/internal/state"
	"github.com/five82/retriever/internal/visualsearch"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    *backend.Client
	Store     *state.Store
	Config    *config.Config
	Logger    *log.Logger
	ListOpts  lists.Options
	PollTick  time.Duration
	ThemeName string
	LastList  string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	store     *state.Store
	config    *config.Config
	logger    *log.Logger
	prefsPath string
	pollTick  time.Duration
	searcher  visualsearch.Searcher
	baseURL   string

	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool

	lists       []lists.List
	active      int
	requested   map[lists.Kind]bool
	selectedRow int
	showDetail  bool
	acting      int

	querying    bool
	queryBefore string
	queryInput  textinput.Model

	spinner spinner.Model
	pager   paginator.Model

	session     state.Snapshot
	lastUpdated time.Time

	notice    string
	noticeErr bool

	showHelp bool
	modal    Modal
}

// New creates the root model with every entity list built but not loaded.
func New(opts Options) (Model, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	all, err := lists.NewAll(opts.ListOpts)
	if err != nil {
		return Model{}, fmt.Errorf("build lists: %w", err)
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	active := 0
	if opts.LastList != "" {
		if kind, err := lists.ParseKind(opts.LastList); err == nil {
			for i, l := range all {
				if l.Kind() == kind {
					active = i
				}
			}
		}
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "Filter this list..."
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pg := paginator.New()
	pg.Type = paginator.Dots

	m := Model{
		ctx:        ctx,
		store:      opts.Store,
		config:     opts.Config,
		logger:     opts.Logger,
		prefsPath:  prefsPath,
		pollTick:   pollTick,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(opts.ThemeName),
		lists:      all,
		active:     active,
		requested:  make(map[lists.Kind]bool),
		queryInput: ti,
		spinner:    sp,
		pager:      pg,
	}
	if opts.Client != nil {
		m.searcher = opts.Client
		m.baseURL = opts.Client.BaseURL()
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if cmd := m.ensureLoaded(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.queryInput.Width = max(10, msg.Width/3)
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case sessionMsg:
		m.session = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case listLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, listview.ErrSuperseded) {
			m.setError(fmt.Sprintf("%s: %v", msg.title, msg.err))
		}
		m.clampSelection()
		return m, nil

	case runActionMsg:
		m.acting++
		return m, tea.Batch(m.actionCmd(msg), m.spinner.Tick)

	case actionDoneMsg:
		m.acting = max(0, m.acting-1)
		// A superseded refresh means the action went through and a newer
		// load owns the list.
		if msg.err != nil && !errors.Is(msg.err, listview.ErrSuperseded) {
			m.setError(fmt.Sprintf("%s failed: %v", msg.label, msg.err))
			m.clampSelection()
			return m, nil
		}
		m.setNotice(msg.label + ": done")
		m.clampSelection()
		if msg.kind == lists.Notifications && m.store != nil {
			switch msg.key {
			case "A":
				m.store.SetUnread(0)
			case "r":
				m.store.SetUnread(m.store.Snapshot().UnreadCount - 1)
			}
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.modal != nil {
			modal, cmd, _ := m.modal.Update(msg, m.keys)
			m.modal = modal
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	if m.querying {
		return m.handleQueryKey(msg)
	}

	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		cmd := m.switchList(1)
		return m, cmd

	case key.Matches(msg, m.keys.ShiftTab):
		cmd := m.switchList(-1)
		return m, cmd

	case key.Matches(msg, m.keys.Visual):
		cmd := m.openVisualSearch()
		return m, cmd
	}

	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.lists) {
		cmd := m.switchList(n - 1 - m.active)
		return m, cmd
	}

	l := m.current()
	if l == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Query):
		snap := l.Snapshot()
		m.querying = true
		m.queryBefore = snap.Query
		m.queryInput.SetValue(snap.Query)
		m.queryInput.CursorEnd()
		cmd := m.queryInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleFacet):
		m.cycleFacet()
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		l.PrevPage()
		m.selectedRow = 0
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		l.NextPage()
		m.selectedRow = 0
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keys.ToggleFocus):
		m.showDetail = !m.showDetail
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.showDetail {
			m.showDetail = false
		} else if snap := l.Snapshot(); snap.Query != "" {
			l.SetQuery("", snap.Facet)
			m.selectedRow = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < m.visibleRows()-1 {
			m.selectedRow++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(0, m.visibleRows()-1)
		return m, nil
	}

	for _, a := range m.actionsForSelection() {
		if a.Key == msg.String() {
			return m.startAction(a)
		}
	}
	return m, nil
}

// handleQueryKey filters the current list as the query is typed.
func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.current()
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.querying = false
		m.queryInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.querying = false
		m.queryInput.Blur()
		if l != nil {
			l.SetQuery(m.queryBefore, l.Snapshot().Facet)
			m.selectedRow = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	if l != nil {
		snap := l.Snapshot()
		if value := m.queryInput.Value(); value != snap.Query {
			l.SetQuery(value, snap.Facet)
			m.selectedRow = 0
		}
	}
	return m, cmd
}

func (m Model) current() lists.List {
	if m.active < 0 || m.active >= len(m.lists) {
		return nil
	}
	return m.lists[m.active]
}

func (m *Model) switchList(delta int) tea.Cmd {
	n := len(m.lists)
	if n == 0 || delta%n == 0 {
		return nil
	}
	m.active = ((m.active+delta)%n + n) % n
	m.selectedRow = 0
	m.showDetail = false
	m.savePrefs()
	return m.ensureLoaded()
}

// ensureLoaded fetches the current list the first time it is shown.
func (m Model) ensureLoaded() tea.Cmd {
	l := m.current()
	if l == nil || m.requested[l.Kind()] {
		return nil
	}
	m.requested[l.Kind()] = true
	return tea.Batch(loadCmd(m.ctx, l, false), m.spinner.Tick)
}

// reload refetches the current list, keeping its page when already loaded.
func (m Model) reload() tea.Cmd {
	l := m.current()
	if l == nil {
		return nil
	}
	refresh := m.requested[l.Kind()] && l.Snapshot().Loaded
	m.requested[l.Kind()] = true
	return tea.Batch(loadCmd(m.ctx, l, refresh), m.spinner.Tick)
}

func (m *Model) cycleFacet() {
	l := m.current()
	if l == nil {
		return
	}
	facets := l.Facets()
	snap := l.Snapshot()
	next := 0
	for i, f := range facets {
		if f == snap.Facet {
			next = (i + 1) % len(facets)
			break
		}
	}
	l.SetQuery(snap.Query, facets[next])
	m.selectedRow = 0
}

func (m Model) visibleRows() int {
	if l := m.current(); l != nil {
		return len(l.Snapshot().Rows)
	}
	return 0
}

func (m *Model) clampSelection() {
	rows := m.visibleRows()
	if m.selectedRow >= rows {
		m.selectedRow = max(0, rows-1)
	}
}

func (m Model) actionsForSelection() []lists.Action {
	l := m.current()
	if l == nil {
		return nil
	}
	return l.Actions(m.selectedRow)
}

// startAction runs a against the selected record, collecting its form or
// asking first when the action is destructive. The record is pinned by key
// so a refresh before the answer cannot retarget it.
func (m Model) startAction(a lists.Action) (tea.Model, tea.Cmd) {
	l := m.current()
	run := runActionMsg{list: l, action: a}
	if snap := l.Snapshot(); !a.Global && m.selectedRow < len(snap.Keys) {
		run.record = snap.Keys[m.selectedRow]
	}
	title := a.Label
	if run.record != "" {
		title = fmt.Sprintf("%s #%s", a.Label, run.record)
	}
	if len(a.Form) > 0 {
		m.modal = newFormModal(title, a.Form, func(values map[string]string) tea.Cmd {
			submitted := run
			submitted.values = values
			return func() tea.Msg { return submitted }
		})
		return m, textinput.Blink
	}
	if !a.Confirm {
		return m.Update(run)
	}
	m.modal = newConfirmModal(title+"?", func() tea.Msg { return run })
	return m, nil
}

func (m Model) actionCmd(run runActionMsg) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		err := run.list.Run(ctx, lists.Request{Action: run.action.Key, Record: run.record, Values: run.values})
		return actionDoneMsg{kind: run.list.Kind(), key: run.action.Key, label: run.action.Label, err: err}
	}
}

func (m *Model) openVisualSearch() tea.Cmd {
	if m.searcher == nil {
		m.setError("visual search is unavailable without an api client")
		return nil
	}
	modal, err := newSearchModal(m.ctx, m.searcher, m.baseURL, m.logger)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	m.modal = modal
	return textinput.Blink
}

func (m Model) busy() bool {
	if m.acting > 0 {
		return true
	}
	l := m.current()
	if l == nil || !m.requested[l.Kind()] {
		return false
	}
	snap := l.Snapshot()
	return snap.Loading || (!snap.Loaded && snap.Err == nil)
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeErr = false
}

func (m *Model) setError(text string) {
	m.notice = text
	m.noticeErr = true
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) {
		p.Theme = m.theme.Name
		if l := m.current(); l != nil {
			p.LastList = string(l.Kind())
		}
	})
	if err != nil && m.logger != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "err", err)
	}
}

// renderMain renders header, tab bar, the current list and the command bar.
func (m Model) renderMain() string {
	contentHeight := max(3, m.height-4)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		m.renderList(contentHeight),
		m.renderStatusLine(),
		m.renderCommandBar(),
	)
}

// Messages

type tickMsg time.Time

type sessionMsg state.Snapshot

type listLoadedMsg struct {
	kind  lists.Kind
	title string
	err   error
}

type runActionMsg struct {
	list   lists.List
	action lists.Action
	record string
	values map[string]string
}

type actionDoneMsg struct {
	kind  lists.Kind
	key   string
	label string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg(store.Snapshot())
	}
}

func loadCmd(ctx context.Context, l lists.List, refresh bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if refresh {
			err = l.Refresh(ctx)
		} else {
			err = l.Load(ctx)
		}
		return listLoadedMsg{kind: l.Kind(), title: l.Title(), err: err}
	}
}
