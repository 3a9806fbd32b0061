package lists

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/retriever/internal/backend"
	"github.com/five82/retriever/internal/listview"
)

// Kind names an entity list.
type Kind string

const (
	Items         Kind = "items"
	Matches       Kind = "matches"
	Approved      Kind = "approved"
	Staff         Kind = "staff"
	Users         Kind = "users"
	Notifications Kind = "notifications"
)

// Kinds returns every list in tab order.
func Kinds() []Kind {
	return []Kind{Items, Matches, Approved, Staff, Users, Notifications}
}

// ParseKind resolves a list name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	want := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range Kinds() {
		if k == want {
			return k, nil
		}
	}
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return "", fmt.Errorf("unknown list %q (want one of %s)", name, strings.Join(names, ", "))
}

var (
	ErrUnknownAction = errors.New("lists: unknown action")
	ErrNotAllowed    = errors.New("lists: action not allowed for this record")
	ErrNoRecord      = errors.New("lists: record no longer exists")
	ErrMissingField  = errors.New("lists: required field is empty")
)

// API is the subset of the backend client the lists use.
type API interface {
	MyItems(ctx context.Context) ([]backend.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	Matches(ctx context.Context) ([]backend.Match, error)
	ApprovedMatches(ctx context.Context) ([]backend.Match, error)
	ApproveMatch(ctx context.Context, matchID int64) error
	RejectMatch(ctx context.Context, matchID int64) error
	ClaimItem(ctx context.Context, matchID int64) error
	Staff(ctx context.Context) ([]backend.StaffMember, error)
	SetStaffActive(ctx context.Context, userID int64, active bool) error
	Customers(ctx context.Context) ([]backend.Customer, error)
	ToggleCustomerStatus(ctx context.Context, userID int64) error
	DeleteCustomer(ctx context.Context, userID int64) error
	Notifications(ctx context.Context) ([]backend.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error
	ReportItem(ctx context.Context, report backend.ItemReport) (*backend.ReportResult, error)
	UpdateItem(ctx context.Context, id int64, update backend.ItemUpdate) (*backend.Item, error)
	CreateStaff(ctx context.Context, staff backend.NewStaff) (*backend.StaffMember, error)
}

// Column is a table header with a preferred width.
type Column struct {
	Title string
	Width int
}

// Field is one labelled line of a detail view.
type Field struct {
	Label string
	Value string
}

// Action is a server-side operation on a record, bound to a key.
type Action struct {
	Key     string
	Label   string
	Confirm bool
	// Global actions ignore the selected row.
	Global bool
	// Form lists the fields to collect before running, prefilled from the
	// record. Empty for plain actions.
	Form []FormField
}

// FormField is one input of a form action.
type FormField struct {
	Name     string
	Label    string
	Value    string
	Required bool
	// Secret fields are masked while typed.
	Secret bool
	Hint   string
}

// Request asks a list to run an action.
type Request struct {
	Action string
	// Record is the key of the target record as listed in Snapshot.Keys.
	// Global actions ignore it.
	Record string
	// Values holds the submitted form keyed by FormField.Name. Fields left
	// out keep their prefilled value.
	Values map[string]string
}

// Snapshot is what a renderer needs to paint one list.
type Snapshot struct {
	Kind    Kind
	Title   string
	Query   string
	Facet   string
	Columns []Column
	Rows    [][]string
	Keys    []string
	Meta    listview.Meta
	Loaded  bool
	Loading bool
	Err     error
}

// Empty reports whether the filtered view has no records.
func (s Snapshot) Empty() bool {
	return s.Meta.TotalCount == 0
}

// Hooks are notified after a list repaints or fails.
type Hooks struct {
	OnRender func(kind Kind)
	OnError  func(kind Kind, err error)
}

// Options configure every list built by New and NewAll.
type Options struct {
	API API
	// User returns the signed-in user, or nil when unknown. Role-gated
	// actions are offered to everyone while it is nil.
	User     func() *backend.User
	PageSize int
	Timeout  time.Duration
	Logger   *log.Logger
	Hooks    Hooks
}

// List is a type-erased entity list backed by a listview.Controller.
type List interface {
	Kind() Kind
	Title() string
	Facets() []string
	Columns() []Column
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
	SetQuery(query, facet string)
	GoToPage(n int)
	NextPage()
	PrevPage()
	Snapshot() Snapshot
	Detail(row int) ([]Field, bool)
	Actions(row int) []Action
	Run(ctx context.Context, req Request) error
}

// New builds the list named kind.
func New(kind Kind, opts Options) (List, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("lists: api is required")
	}
	switch kind {
	case Items:
		return build(itemsDef(), opts)
	case Matches:
		return build(matchesDef(), opts)
	case Approved:
		return build(approvedDef(), opts)
	case Staff:
		return build(staffDef(), opts)
	case Users:
		return build(usersDef(), opts)
	case Notifications:
		return build(notificationsDef(), opts)
	default:
		return nil, fmt.Errorf("lists: unknown kind %q", kind)
	}
}

// NewAll builds every list in tab order.
func NewAll(opts Options) ([]List, error) {
	out := make([]List, 0, len(Kinds()))
	for _, k := range Kinds() {
		l, err := New(k, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func build[T any](def definition[T], opts Options) (List, error) {
	t, err := newTable(def, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}

type definition[T any] struct {
	kind      Kind
	title     string
	pageSize  int
	facets    []string
	columns   []Column
	fetch     func(ctx context.Context, api API) ([]T, error)
	predicate listview.Predicate[T]
	key       func(T) string
	row       func(T) []string
	detail    func(T) []Field
	actions   []actionDef[T]
}

type actionDef[T any] struct {
	Action
	// allowed is asked with the zero record for global actions.
	allowed func(user *backend.User, record T) bool
	run     func(ctx context.Context, api API, record T) error
	// form and submit replace run for actions that collect input.
	form   func(record T) []FormField
	submit func(ctx context.Context, api API, record T, values map[string]string) error
}

func (a actionDef[T]) describe(record T) Action {
	out := a.Action
	if a.form != nil {
		out.Form = a.form(record)
	}
	return out
}

type table[T any] struct {
	def  definition[T]
	opts Options
	ctrl *listview.Controller[T]

	mu    sync.Mutex
	items []T
	meta  listview.Meta
}

func newTable[T any](def definition[T], opts Options) (*table[T], error) {
	t := &table[T]{def: def, opts: opts}
	pageSize := def.pageSize
	if opts.PageSize > 0 {
		pageSize = opts.PageSize
	}
	ctrl, err := listview.New(listview.Config[T]{
		Fetch:     func(ctx context.Context) ([]T, error) { return def.fetch(ctx, opts.API) },
		Predicate: def.predicate,
		PageSize:  pageSize,
		Render:    t.render,
		OnEmpty:   func(meta listview.Meta) { t.render(nil, meta) },
		OnError:   t.fail,
		Timeout:   opts.Timeout,
		Logger:    opts.Logger,
		Name:      string(def.kind),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.kind, err)
	}
	t.ctrl = ctrl
	t.meta = ctrl.View().Meta
	return t, nil
}

func (t *table[T]) render(items []T, meta listview.Meta) {
	t.mu.Lock()
	t.items = items
	t.meta = meta
	t.mu.Unlock()
	if t.opts.Hooks.OnRender != nil {
		t.opts.Hooks.OnRender(t.def.kind)
	}
}

func (t *table[T]) fail(err error) {
	if t.opts.Hooks.OnError != nil {
		t.opts.Hooks.OnError(t.def.kind, err)
	}
}

func (t *table[T]) Kind() Kind        { return t.def.kind }
func (t *table[T]) Title() string     { return t.def.title }
func (t *table[T]) Columns() []Column { return append([]Column(nil), t.def.columns...) }

func (t *table[T]) Facets() []string {
	return append([]string{listview.FacetAll}, t.def.facets...)
}

func (t *table[T]) Load(ctx context.Context) error    { return t.ctrl.Load(ctx) }
func (t *table[T]) Refresh(ctx context.Context) error { return t.ctrl.Refresh(ctx) }
func (t *table[T]) SetQuery(query, facet string)      { t.ctrl.SetQuery(query, facet) }
func (t *table[T]) GoToPage(n int)                    { t.ctrl.GoToPage(n) }
func (t *table[T]) NextPage()                         { t.ctrl.NextPage() }
func (t *table[T]) PrevPage()                         { t.ctrl.PrevPage() }

func (t *table[T]) Snapshot() Snapshot {
	view := t.ctrl.View()
	t.mu.Lock()
	items := t.items
	meta := t.meta
	t.mu.Unlock()

	snap := Snapshot{
		Kind:    t.def.kind,
		Title:   t.def.title,
		Query:   view.Query,
		Facet:   view.Facet,
		Columns: t.Columns(),
		Meta:    meta,
		Loaded:  view.Loaded,
		Loading: view.Loading,
		Err:     view.Err,
	}
	for _, rec := range items {
		snap.Rows = append(snap.Rows, t.def.row(rec))
		snap.Keys = append(snap.Keys, t.def.key(rec))
	}
	return snap
}

func (t *table[T]) record(row int) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	if row < 0 || row >= len(t.items) {
		return zero, false
	}
	return t.items[row], true
}

func (t *table[T]) Detail(row int) ([]Field, bool) {
	rec, ok := t.record(row)
	if !ok {
		return nil, false
	}
	return t.def.detail(rec), true
}

func (t *table[T]) Actions(row int) []Action {
	rec, hasRecord := t.record(row)
	user := t.user()
	var out []Action
	for _, a := range t.def.actions {
		if a.Global {
			var zero T
			if a.allowed == nil || a.allowed(user, zero) {
				out = append(out, a.describe(zero))
			}
			continue
		}
		if !hasRecord {
			continue
		}
		if a.allowed != nil && !a.allowed(user, rec) {
			continue
		}
		out = append(out, a.describe(rec))
	}
	return out
}

// Run executes req.Action against the record keyed req.Record and refreshes
// the list when the server accepts it. The record is looked up again at run
// time, so a refresh since the row was picked cannot redirect the action.
func (t *table[T]) Run(ctx context.Context, req Request) error {
	var def *actionDef[T]
	for i := range t.def.actions {
		if t.def.actions[i].Key == req.Action {
			def = &t.def.actions[i]
			break
		}
	}
	if def == nil {
		return fmt.Errorf("%w %q for %s", ErrUnknownAction, req.Action, t.def.kind)
	}
	var rec T
	if !def.Global {
		var ok bool
		rec, ok = t.ctrl.Find(func(r T) bool { return t.def.key(r) == req.Record })
		if !ok {
			return fmt.Errorf("%w: %s #%s", ErrNoRecord, t.def.kind, req.Record)
		}
	}
	if def.allowed != nil && !def.allowed(t.user(), rec) {
		return fmt.Errorf("%w: %s", ErrNotAllowed, def.Label)
	}
	if def.submit == nil {
		return t.ctrl.Mutate(ctx, func(ctx context.Context) error {
			return def.run(ctx, t.opts.API, rec)
		})
	}
	values := make(map[string]string, len(req.Values))
	for _, f := range def.form(rec) {
		v, ok := req.Values[f.Name]
		if !ok {
			v = f.Value
		}
		v = strings.TrimSpace(v)
		if f.Required && v == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.Label)
		}
		values[f.Name] = v
	}
	return t.ctrl.Mutate(ctx, func(ctx context.Context) error {
		return def.submit(ctx, t.opts.API, rec, values)
	})
}

func (t *table[T]) user() *backend.User {
	if t.opts.User == nil {
		return nil
	}
	return t.opts.User()
}
