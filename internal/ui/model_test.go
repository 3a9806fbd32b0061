package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/retriever/internal/backend"
	"github.com/five82/retriever/internal/lists"
	"github.com/five82/retriever/internal/listview"
	"github.com/five82/retriever/internal/prefs"
	"github.com/five82/retriever/internal/visualsearch"
)

type fakeAPI struct {
	mu        sync.Mutex
	items     []backend.Item
	fetchErr  error
	itemLoads int
	calls     []string
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeAPI) MyItems(context.Context) ([]backend.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemLoads++
	return f.items, f.fetchErr
}
func (f *fakeAPI) DeleteItem(_ context.Context, id int64) error {
	return f.record(fmt.Sprintf("delete item %d", id))
}
func (f *fakeAPI) Matches(context.Context) ([]backend.Match, error)         { return nil, f.fetchErr }
func (f *fakeAPI) ApprovedMatches(context.Context) ([]backend.Match, error) { return nil, f.fetchErr }
func (f *fakeAPI) ApproveMatch(context.Context, int64) error                { return nil }
func (f *fakeAPI) RejectMatch(context.Context, int64) error                 { return nil }
func (f *fakeAPI) ClaimItem(context.Context, int64) error                   { return nil }
func (f *fakeAPI) Staff(context.Context) ([]backend.StaffMember, error)     { return nil, f.fetchErr }
func (f *fakeAPI) SetStaffActive(context.Context, int64, bool) error        { return nil }
func (f *fakeAPI) Customers(context.Context) ([]backend.Customer, error)    { return nil, f.fetchErr }
func (f *fakeAPI) ToggleCustomerStatus(context.Context, int64) error        { return nil }
func (f *fakeAPI) DeleteCustomer(context.Context, int64) error              { return nil }
func (f *fakeAPI) Notifications(context.Context) ([]backend.Notification, error) {
	return nil, f.fetchErr
}
func (f *fakeAPI) MarkNotificationRead(context.Context, int64) error { return nil }
func (f *fakeAPI) MarkAllNotificationsRead(context.Context) error    { return nil }
func (f *fakeAPI) ReportItem(_ context.Context, r backend.ItemReport) (*backend.ReportResult, error) {
	return &backend.ReportResult{ItemID: 99}, f.record(fmt.Sprintf("report %s at %s", r.ItemType, r.Location))
}
func (f *fakeAPI) UpdateItem(_ context.Context, id int64, u backend.ItemUpdate) (*backend.Item, error) {
	return &backend.Item{ItemID: id}, f.record(fmt.Sprintf("update item %d color=%s", id, *u.Color))
}
func (f *fakeAPI) CreateStaff(_ context.Context, s backend.NewStaff) (*backend.StaffMember, error) {
	return &backend.StaffMember{Email: s.Email}, f.record("create staff " + s.Email)
}

func (f *fakeAPI) setItems(items []backend.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func (f *fakeAPI) loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.itemLoads
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func thirteenItems() []backend.Item {
	statuses := []string{backend.StatusLost, backend.StatusFound, backend.StatusMatched}
	out := make([]backend.Item, 13)
	for i := range out {
		out[i] = backend.Item{ItemID: int64(i + 1), Name: fmt.Sprintf("Item %02d", i+1), Status: statuses[i%3]}
	}
	out[4].Name = "Black Wallet"
	return out
}

func newTestModel(t *testing.T, api *fakeAPI, lastList string) Model {
	t.Helper()
	m, err := New(Options{
		ListOpts:  lists.Options{API: api},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		LastList:  lastList,
	})
	require.NoError(t, err)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

// settle runs cmd and feeds back the messages the model produces for itself,
// ignoring spinner ticks so nothing sleeps.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case listLoadedMsg, runActionMsg, actionDoneMsg, searchDoneMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func loadedModel(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := newTestModel(t, api, "")
	return settle(t, m, m.ensureLoaded())
}

func TestModel_LoadsListOnceOnFirstShow(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	snap := m.current().Snapshot()
	require.True(t, snap.Loaded)
	assert.Len(t, snap.Rows, 5)
	assert.Equal(t, "Page 1 of 3 (showing 1-5 of 13)", snap.Meta.Summary())
	assert.Nil(t, m.ensureLoaded(), "second show must not refetch")
	assert.Equal(t, 1, api.loads())
}

func TestModel_PagingAndFacetStayLocal(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	m, _ = press(t, m, "right")
	assert.Equal(t, 2, m.current().Snapshot().Meta.Page)

	m, _ = press(t, m, "f")
	snap := m.current().Snapshot()
	assert.Equal(t, backend.StatusLost, snap.Facet)
	assert.Equal(t, 1, snap.Meta.Page)
	assert.Equal(t, 5, snap.Meta.TotalCount)

	m, _ = press(t, m, "left")
	assert.Equal(t, 1, api.loads())
}

func TestModel_QueryFiltersAsTyped(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	m, _ = press(t, m, "/", "wal")
	require.True(t, m.querying)
	snap := m.current().Snapshot()
	assert.Equal(t, "wal", snap.Query)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "Black Wallet", snap.Rows[0][1])

	m, _ = press(t, m, "enter")
	assert.False(t, m.querying)
	assert.Equal(t, "wal", m.current().Snapshot().Query)

	m, _ = press(t, m, "/", "x", "esc")
	assert.Equal(t, "wal", m.current().Snapshot().Query, "esc restores the query from before editing")

	m, _ = press(t, m, "esc")
	assert.Equal(t, 13, m.current().Snapshot().Meta.TotalCount)
	assert.Equal(t, 1, api.loads())
}

func TestModel_TabSwitchLoadsAndRemembersList(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	m, cmd := press(t, m, "tab")
	require.NotNil(t, cmd)
	assert.Equal(t, lists.Matches, m.current().Kind())
	m = settle(t, m, cmd)
	assert.True(t, m.current().Snapshot().Loaded)

	saved, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, string(lists.Matches), saved.LastList)

	m, _ = press(t, m, "shift+tab", "shift+tab")
	assert.Equal(t, lists.Notifications, m.current().Kind())

	m, _ = press(t, m, "4")
	assert.Equal(t, lists.Staff, m.current().Kind())
}

func TestModel_RestoresLastList(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, "staff")
	assert.Equal(t, lists.Staff, m.current().Kind())

	m = newTestModel(t, &fakeAPI{}, "nonsense")
	assert.Equal(t, lists.Items, m.current().Kind())
}

func TestModel_ConfirmedActionRunsAndRefreshes(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	m, _ = press(t, m, "j", "d")
	require.NotNil(t, m.modal, "delete asks for confirmation")
	assert.Contains(t, m.View(), "Delete item #2?")

	m, cmd := press(t, m, "y")
	assert.Nil(t, m.modal)
	m = settle(t, m, cmd)

	assert.Equal(t, []string{"delete item 2"}, api.recorded())
	assert.Equal(t, 2, api.loads(), "a successful action refreshes the list")
	assert.Equal(t, "Delete item: done", m.notice)
	assert.False(t, m.noticeErr)
	assert.Equal(t, 0, m.acting)
}

func TestModel_ConfirmedActionKeepsItsRecordAfterRefresh(t *testing.T) {
	api := &fakeAPI{items: []backend.Item{
		{ItemID: 7, Name: "Wallet", Status: backend.StatusLost},
		{ItemID: 8, Name: "Umbrella", Status: backend.StatusLost},
	}}
	m := loadedModel(t, api)

	m, _ = press(t, m, "d")
	require.NotNil(t, m.modal)
	assert.Contains(t, m.View(), "Delete item #7?")

	api.setItems(api.items[1:])
	require.NoError(t, m.current().Refresh(context.Background()))

	m, cmd := press(t, m, "y")
	m = settle(t, m, cmd)

	assert.Empty(t, api.recorded(), "the record that moved into row 0 is untouched")
	assert.True(t, m.noticeErr)
	assert.Contains(t, m.notice, "no longer exists")
}

func TestModel_SupersededRefreshAfterActionIsDone(t *testing.T) {
	m := loadedModel(t, &fakeAPI{items: thirteenItems()})

	next, _ := m.Update(actionDoneMsg{
		kind:  lists.Items,
		key:   "d",
		label: "Delete item",
		err:   fmt.Errorf("items: %w", listview.ErrSuperseded),
	})
	m = next.(Model)

	assert.Equal(t, "Delete item: done", m.notice)
	assert.False(t, m.noticeErr)
}

func TestModel_ReportFormRequiresFieldsThenSubmits(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	m, _ = press(t, m, "n")
	form, ok := m.modal.(*formModal)
	require.True(t, ok, "new report opens a form")
	assert.Contains(t, m.View(), "New report")

	m, _ = press(t, m, "Umbrella", "ctrl+s")
	require.NotNil(t, m.modal, "blank required fields keep the form open")
	assert.Equal(t, "Description is required.", form.notice)
	assert.Equal(t, 3, form.focus)

	m, _ = press(t, m, "Blue, folding", "tab", "Lobby")
	m, cmd := press(t, m, "ctrl+s")
	assert.Nil(t, m.modal)
	m = settle(t, m, cmd)

	assert.Equal(t, []string{"report Umbrella at Lobby"}, api.recorded())
	assert.Equal(t, "New report: done", m.notice)
	assert.Equal(t, 2, api.loads())
}

func TestModel_EditFormIsPrefilled(t *testing.T) {
	api := &fakeAPI{items: []backend.Item{{ItemID: 4, ItemType: "Wallet", Color: "Brown", Description: "Leather", LostLocation: "Gym", Status: backend.StatusLost}}}
	m := loadedModel(t, api)

	m, _ = press(t, m, "u")
	form, ok := m.modal.(*formModal)
	require.True(t, ok)
	assert.Equal(t, "Brown", form.inputs[2].Value())
	assert.Contains(t, m.View(), "Edit report #4")

	m, _ = press(t, m, "esc")
	assert.Nil(t, m.modal)
	assert.Empty(t, api.recorded())
}

func TestModel_DeclinedActionDoesNothing(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	m, _ = press(t, m, "d", "n")
	assert.Nil(t, m.modal)
	assert.Empty(t, api.recorded())
	assert.Equal(t, 1, api.loads())
}

func TestModel_LoadFailureIsReported(t *testing.T) {
	api := &fakeAPI{fetchErr: errors.New("connection refused")}
	m := loadedModel(t, api)

	snap := m.current().Snapshot()
	assert.False(t, snap.Loaded)
	assert.True(t, m.noticeErr)
	assert.Contains(t, m.notice, "connection refused")
	assert.Contains(t, m.View(), "Press R to retry.")
}

func TestModel_ViewShowsPageAndEmptyState(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	view := m.View()
	assert.Contains(t, view, "retriever")
	assert.Contains(t, view, "Items (13)")
	assert.Contains(t, view, "Page 1 of 3 (showing 1-5 of 13)")
	assert.Contains(t, view, "←/→")

	styles := m.theme.Styles()
	faint, accent := styles.FaintText.GetForeground(), styles.AccentText.GetForeground()
	prev, next := pageArrowStyles(m.current().Snapshot().Meta, styles)
	assert.Equal(t, faint, prev.GetForeground(), "no page before the first")
	assert.Equal(t, accent, next.GetForeground())

	m, _ = press(t, m, "right", "right")
	prev, next = pageArrowStyles(m.current().Snapshot().Meta, styles)
	assert.Equal(t, accent, prev.GetForeground())
	assert.Equal(t, faint, next.GetForeground(), "no page after the last")

	m, _ = press(t, m, "/", "zzz", "enter")
	assert.Contains(t, m.View(), "No items found.")

	m, _ = press(t, m, "enter")
	assert.True(t, m.showDetail)
}

func TestModel_DetailPaneListsFields(t *testing.T) {
	api := &fakeAPI{items: thirteenItems()}
	m := loadedModel(t, api)

	m, _ = press(t, m, "G", "enter")
	assert.Equal(t, 4, m.selectedRow)
	view := m.View()
	assert.Contains(t, view, "Details")
	assert.Contains(t, view, "Black Wallet")
	assert.Contains(t, view, "[d]")
}

func TestModel_HelpAndThemeKeys(t *testing.T) {
	m := loadedModel(t, &fakeAPI{items: thirteenItems()})

	m, _ = press(t, m, "?")
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "any key closes")
	assert.Contains(t, m.View(), "Delete item")
	m, _ = press(t, m, "j")
	assert.False(t, m.showHelp)

	before := m.theme.Name
	m, _ = press(t, m, "T")
	assert.Equal(t, NextTheme(before), m.theme.Name)
	saved, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, m.theme.Name, saved.Theme)

	_, cmd := press(t, m, "e")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

type stubSearcher struct {
	matches []backend.VisualMatch
	err     error
}

func (s stubSearcher) SearchByImage(context.Context, string, string, []byte) ([]backend.VisualMatch, error) {
	return s.matches, s.err
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "umbrella.png")
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func searchModel(t *testing.T, searcher visualsearch.Searcher) Model {
	t.Helper()
	m := loadedModel(t, &fakeAPI{items: thirteenItems()})
	m.searcher = searcher
	m.baseURL = "http://api.test"
	m, _ = press(t, m, "v")
	require.NotNil(t, m.modal)
	return m
}

func flowOf(t *testing.T, m Model) *visualsearch.Flow {
	t.Helper()
	s, ok := m.modal.(*searchModal)
	require.True(t, ok)
	return s.flow
}

func TestSearchModal_StageSearchAndOpenDetail(t *testing.T) {
	searcher := stubSearcher{matches: []backend.VisualMatch{
		{Name: "Blue Umbrella", Location: "Lobby", MatchConfidence: "87%", RawScore: 0.87, ImagePath: "frontend/uploads/u.png"},
		{Name: "Scarf", MatchConfidence: "64%", RawScore: 0.64},
	}}
	m := searchModel(t, searcher)
	flow := flowOf(t, m)

	m, _ = press(t, m, writeImage(t), "enter")
	assert.Equal(t, visualsearch.FileStaged, flow.Status())
	assert.Contains(t, m.View(), "umbrella.png")

	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)
	require.Equal(t, visualsearch.ResultsReady, flow.Status())
	view := m.View()
	assert.Contains(t, view, "87% Match")
	assert.Contains(t, view, "Scarf")

	m, _ = press(t, m, "enter")
	require.Equal(t, visualsearch.DetailOpen, flow.Status())
	view = m.View()
	assert.Contains(t, view, "http://api.test/uploads/u.png")
	assert.Contains(t, view, "Lobby")

	m, _ = press(t, m, "esc")
	assert.Equal(t, visualsearch.ResultsReady, flow.Status())

	m, _ = press(t, m, "j", "enter")
	assert.Contains(t, m.View(), "(no image)")

	m, _ = press(t, m, "esc", "esc")
	assert.Nil(t, m.modal)
	assert.Equal(t, visualsearch.Idle, flow.Status())
}

func TestSearchModal_RejectsNonImage(t *testing.T) {
	m := searchModel(t, stubSearcher{})
	flow := flowOf(t, m)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	m, _ = press(t, m, path, "enter")
	assert.Equal(t, visualsearch.Idle, flow.Status())
	assert.Contains(t, m.View(), "Only image files can be searched.")
}

func TestSearchModal_FailureKeepsFileStaged(t *testing.T) {
	m := searchModel(t, stubSearcher{err: errors.New("upstream down")})
	flow := flowOf(t, m)

	m, _ = press(t, m, writeImage(t), "enter")
	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)

	assert.Equal(t, visualsearch.FileStaged, flow.Status())
	view := m.View()
	assert.Contains(t, view, "Search failed: upstream down")
	assert.Contains(t, view, "umbrella.png")
}

func TestSearchModal_EmptyResults(t *testing.T) {
	m := searchModel(t, stubSearcher{})
	flow := flowOf(t, m)

	m, _ = press(t, m, writeImage(t), "enter")
	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)

	assert.Equal(t, visualsearch.ResultsReady, flow.Status())
	assert.Empty(t, flow.Snapshot().Results)
	assert.Contains(t, m.View(), "No matching items found.")
}

func TestSearchModal_RemoveFileReturnsToIdle(t *testing.T) {
	m := searchModel(t, stubSearcher{})
	flow := flowOf(t, m)

	m, _ = press(t, m, writeImage(t), "enter")
	require.Equal(t, visualsearch.FileStaged, flow.Status())
	m, _ = press(t, m, "x")
	assert.Equal(t, visualsearch.Idle, flow.Status())
	assert.True(t, strings.Contains(m.View(), "Image:"))
	assert.True(t, m.modal.(*searchModal).input.Focused())
}
