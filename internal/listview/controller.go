package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// FacetAll is the facet value that disables facet filtering.
const FacetAll = "ALL"

// ErrSuperseded is returned by Load and Refresh when a newer load was started
// before this one resolved. The stale result is dropped without callbacks.
var ErrSuperseded = errors.New("listview: load superseded by a newer request")

// Predicate reports whether record matches the free-text query and facet.
type Predicate[T any] func(record T, query, facet string) bool

// Meta describes the visible page.
type Meta struct {
	Page       int
	TotalPages int
	TotalCount int
	Start      int // 1-based index of the first visible record, 0 when empty
	End        int // 1-based index of the last visible record
	HasPrev    bool
	HasNext    bool
}

// Config wires a Controller to its data source and render surface.
type Config[T any] struct {
	Fetch     func(ctx context.Context) ([]T, error)
	Predicate Predicate[T]
	PageSize  int
	Render    func(items []T, meta Meta)

	// Optional.
	OnEmpty func(meta Meta)
	OnError func(err error)
	Timeout time.Duration
	Logger  *log.Logger
	Name    string
}

// Controller owns one collection, its filtered view and the current page.
//
// Frames are numbered under mu and painted under paintMu, so callbacks never
// overlap and a frame older than the last painted one is dropped.
type Controller[T any] struct {
	cfg Config[T]

	mu         sync.Mutex
	all        []T
	filtered   []T
	query      string
	facet      string
	page       int
	generation uint64
	frames     uint64
	loaded     bool
	loading    bool
	lastErr    error

	paintMu sync.Mutex
	painted uint64
}

// New validates cfg and returns an empty controller on page 1.
func New[T any](cfg Config[T]) (*Controller[T], error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("listview: fetch is required")
	}
	if cfg.Predicate == nil {
		return nil, fmt.Errorf("listview: predicate is required")
	}
	if cfg.Render == nil {
		return nil, fmt.Errorf("listview: render is required")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("listview: page size must be positive, got %d", cfg.PageSize)
	}
	return &Controller[T]{
		cfg:   cfg,
		facet: FacetAll,
		page:  1,
	}, nil
}

// Load fetches the full collection, re-applies the current query and facet
// and shows page 1. On failure the previous collection is kept and OnError is
// called once.
func (c *Controller[T]) Load(ctx context.Context) error {
	return c.load(ctx, false)
}

// Refresh is Load that keeps the current page where it still exists.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.load(ctx, true)
}

func (c *Controller[T]) load(ctx context.Context, keepPage bool) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	c.mu.Unlock()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	records, err := c.cfg.Fetch(ctx)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.debug("dropping stale load", "generation", gen)
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		c.warn("load failed", "err", err, "elapsed", time.Since(started))
		if c.cfg.OnError != nil {
			c.cfg.OnError(err)
		}
		return err
	}

	c.all = cloneRecords(records)
	c.loaded = true
	c.lastErr = nil
	c.filtered = c.applyFilterLocked()
	if keepPage {
		c.page = clamp(c.page, 1, c.totalPagesLocked())
	} else {
		c.page = 1
	}
	frame := c.nextFrameLocked()
	c.mu.Unlock()

	c.debug("loaded", "records", len(records), "filtered", frame.meta.TotalCount, "elapsed", time.Since(started))
	c.emit(frame)
	return nil
}

// SetQuery stores query and facet, rebuilds the filtered view from the full
// collection and returns to page 1. An empty facet is treated as FacetAll.
func (c *Controller[T]) SetQuery(query, facet string) {
	if facet == "" {
		facet = FacetAll
	}
	c.mu.Lock()
	c.query = query
	c.facet = facet
	c.filtered = c.applyFilterLocked()
	c.page = 1
	frame := c.nextFrameLocked()
	c.mu.Unlock()

	c.emit(frame)
}

// GoToPage moves to page n, clamped to [1, TotalPages]. It never refetches or
// refilters.
func (c *Controller[T]) GoToPage(n int) {
	c.mu.Lock()
	c.page = clamp(n, 1, c.totalPagesLocked())
	frame := c.nextFrameLocked()
	c.mu.Unlock()

	c.emit(frame)
}

// NextPage advances one page; a no-op render on the last page.
func (c *Controller[T]) NextPage() {
	c.mu.Lock()
	n := c.page + 1
	c.mu.Unlock()
	c.GoToPage(n)
}

// PrevPage goes back one page; a no-op render on the first page.
func (c *Controller[T]) PrevPage() {
	c.mu.Lock()
	n := c.page - 1
	c.mu.Unlock()
	c.GoToPage(n)
}

// Mutate runs a server-side action and, only when it succeeds, refreshes the
// collection. A failed action is reported through OnError and leaves every
// piece of local state untouched.
func (c *Controller[T]) Mutate(ctx context.Context, action func(ctx context.Context) error) error {
	if action == nil {
		return fmt.Errorf("listview: action is required")
	}
	if err := action(ctx); err != nil {
		c.warn("action failed", "err", err)
		if c.cfg.OnError != nil {
			c.cfg.OnError(err)
		}
		return err
	}
	return c.Refresh(ctx)
}

// Find returns the first record of the full collection that match accepts,
// regardless of the current query, facet or page.
func (c *Controller[T]) Find(match func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, record := range c.all {
		if match(record) {
			return record, true
		}
	}
	var zero T
	return zero, false
}

// View returns a copy of the controller state.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := c.frameLocked()
	return View[T]{
		Query:    c.query,
		Facet:    c.facet,
		Items:    frame.items,
		Meta:     frame.meta,
		All:      cloneRecords(c.all),
		Filtered: cloneRecords(c.filtered),
		Loaded:   c.loaded,
		Loading:  c.loading,
		Err:      c.lastErr,
	}
}

// View is a point-in-time copy of a controller.
type View[T any] struct {
	Query    string
	Facet    string
	Items    []T
	Meta     Meta
	All      []T
	Filtered []T
	Loaded   bool
	Loading  bool
	Err      error
}

type frame[T any] struct {
	seq   uint64
	items []T
	meta  Meta
}

func (c *Controller[T]) applyFilterLocked() []T {
	out := make([]T, 0, len(c.all))
	for _, record := range c.all {
		if c.cfg.Predicate(record, c.query, c.facet) {
			out = append(out, record)
		}
	}
	return out
}

func (c *Controller[T]) totalPagesLocked() int {
	return TotalPages(len(c.filtered), c.cfg.PageSize)
}

func (c *Controller[T]) frameLocked() frame[T] {
	total := len(c.filtered)
	pages := c.totalPagesLocked()
	c.page = clamp(c.page, 1, pages)

	start, end := Bounds(c.page, c.cfg.PageSize, total)
	meta := Meta{
		Page:       c.page,
		TotalPages: pages,
		TotalCount: total,
		End:        end,
		HasPrev:    c.page > 1,
		HasNext:    c.page < pages,
	}
	if total > 0 {
		meta.Start = start + 1
	}
	return frame[T]{items: cloneRecords(c.filtered[start:end]), meta: meta}
}

// nextFrameLocked builds the frame for the current state and numbers it.
func (c *Controller[T]) nextFrameLocked() frame[T] {
	f := c.frameLocked()
	c.frames++
	f.seq = c.frames
	return f
}

// emit paints f unless a newer frame has already been painted. Callbacks run
// outside mu, so they may read View, but must not change the controller.
func (c *Controller[T]) emit(f frame[T]) {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()
	if f.seq <= c.painted {
		c.debug("dropping stale frame", "frame", f.seq, "painted", c.painted)
		return
	}
	c.painted = f.seq
	if f.meta.TotalCount == 0 && c.cfg.OnEmpty != nil {
		c.cfg.OnEmpty(f.meta)
		return
	}
	c.cfg.Render(f.items, f.meta)
}

func (c *Controller[T]) debug(msg string, keyvals ...any) {
	if c.cfg.Logger == nil {
		return
	}
	c.cfg.Logger.Debug(msg, append([]any{"list", c.cfg.Name}, keyvals...)...)
}

func (c *Controller[T]) warn(msg string, keyvals ...any) {
	if c.cfg.Logger == nil {
		return
	}
	c.cfg.Logger.Warn(msg, append([]any{"list", c.cfg.Name}, keyvals...)...)
}

func cloneRecords[T any](records []T) []T {
	if len(records) == 0 {
		return nil
	}
	dup := make([]T, len(records))
	copy(dup, records)
	return dup
}
