package visualsearch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/retriever/internal/backend"
)

// Status is the position of a search session in its lifecycle.
type Status int

const (
	Idle Status = iota
	FileStaged
	Searching
	ResultsReady
	DetailOpen
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileStaged:
		return "file-staged"
	case Searching:
		return "searching"
	case ResultsReady:
		return "results-ready"
	case DetailOpen:
		return "detail-open"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

var (
	ErrNotImage          = errors.New("visualsearch: file is not an image")
	ErrNoFile            = errors.New("visualsearch: no file staged")
	ErrBusy              = errors.New("visualsearch: a search is already running")
	ErrInvalidTransition = errors.New("visualsearch: invalid transition")
	ErrNoResult          = errors.New("visualsearch: no such result")
	// ErrSuperseded is returned by Submit when ResetAll ran before the search
	// resolved. The response is dropped without callbacks.
	ErrSuperseded = errors.New("visualsearch: search superseded")
)

// Searcher uploads an image and returns the raw matches.
type Searcher interface {
	SearchByImage(ctx context.Context, filename, contentType string, data []byte) ([]backend.VisualMatch, error)
}

// Config wires a Flow to the backend and its render surface. Every callback
// is optional.
type Config struct {
	Searcher Searcher
	BaseURL  string

	OnStaged    func(file File)
	OnSearching func(file File)
	OnResults   func(results []MatchResult)
	OnEmpty     func()
	OnDetail    func(result MatchResult)
	OnError     func(err error)
	OnReset     func()

	Timeout time.Duration
	Logger  *log.Logger
}

// Session is a point-in-time copy of a Flow.
type Session struct {
	Status   Status
	File     *File
	Results  []MatchResult
	Selected *MatchResult
	Err      error
}

// Flow drives one upload, search, results and detail session.
type Flow struct {
	cfg Config

	mu         sync.Mutex
	status     Status
	file       *File
	results    []MatchResult
	selected   *MatchResult
	lastErr    error
	generation uint64
}

// New returns an idle Flow.
func New(cfg Config) (*Flow, error) {
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("visualsearch: searcher is required")
	}
	return &Flow{cfg: cfg}, nil
}

// SelectFile stages file for upload. Files whose MIME type is not image/*
// are rejected with ErrNotImage and leave the session unchanged. When MIME
// is empty it is sniffed from the content. Selecting again while staged
// replaces the file; selecting from ResultsReady discards the results.
func (f *Flow) SelectFile(file File) error {
	if file.MIME == "" {
		file.MIME = detectMIME(file.Data)
	}
	if !file.IsImage() {
		f.debug("rejected file", "name", file.Name, "mime", file.MIME)
		return fmt.Errorf("%w: %s has type %s", ErrNotImage, file.Name, file.MIME)
	}

	f.mu.Lock()
	switch f.status {
	case Searching:
		f.mu.Unlock()
		return ErrBusy
	case DetailOpen:
		from := f.status
		f.mu.Unlock()
		return fmt.Errorf("%w: select file from %s", ErrInvalidTransition, from)
	}
	staged := file
	f.file = &staged
	f.results = nil
	f.selected = nil
	f.lastErr = nil
	f.status = FileStaged
	f.mu.Unlock()

	f.debug("file staged", "name", file.Name, "mime", file.MIME, "bytes", file.Size())
	if f.cfg.OnStaged != nil {
		f.cfg.OnStaged(file)
	}
	return nil
}

// RemoveFile unstages the file and returns to Idle.
func (f *Flow) RemoveFile() error {
	f.mu.Lock()
	if f.status != FileStaged {
		from := f.status
		f.mu.Unlock()
		return fmt.Errorf("%w: remove file from %s", ErrInvalidTransition, from)
	}
	f.file = nil
	f.status = Idle
	f.mu.Unlock()

	if f.cfg.OnReset != nil {
		f.cfg.OnReset()
	}
	return nil
}

// Submit uploads the staged file and blocks until the search resolves. On
// success the session moves to ResultsReady, with OnEmpty called instead of
// OnResults when nothing matched. On failure the session returns to
// FileStaged with the file intact and OnError is called once.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.status {
	case FileStaged:
	case Searching:
		f.mu.Unlock()
		return ErrBusy
	case Idle:
		f.mu.Unlock()
		return ErrNoFile
	default:
		from := f.status
		f.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, from)
	}
	file := *f.file
	f.status = Searching
	f.lastErr = nil
	f.generation++
	gen := f.generation
	f.mu.Unlock()

	if f.cfg.OnSearching != nil {
		f.cfg.OnSearching(file)
	}

	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := f.cfg.Searcher.SearchByImage(ctx, file.Name, file.MIME, file.Data)

	f.mu.Lock()
	if gen != f.generation || f.status != Searching {
		f.mu.Unlock()
		f.debug("dropping stale search", "generation", gen)
		return ErrSuperseded
	}
	if err != nil {
		f.status = FileStaged
		f.lastErr = err
		f.mu.Unlock()
		f.warn("search failed", "err", err, "elapsed", time.Since(started))
		if f.cfg.OnError != nil {
			f.cfg.OnError(err)
		}
		return err
	}
	results := mapResults(f.cfg.BaseURL, raw)
	f.results = results
	f.selected = nil
	f.status = ResultsReady
	f.mu.Unlock()

	f.debug("search finished", "results", len(results), "elapsed", time.Since(started))
	if len(results) == 0 {
		if f.cfg.OnEmpty != nil {
			f.cfg.OnEmpty()
		}
		return nil
	}
	if f.cfg.OnResults != nil {
		f.cfg.OnResults(cloneResults(results))
	}
	return nil
}

// SelectResult opens the detail view for results[index]. It makes no
// network call.
func (f *Flow) SelectResult(index int) error {
	f.mu.Lock()
	if f.status != ResultsReady {
		from := f.status
		f.mu.Unlock()
		return fmt.Errorf("%w: select result from %s", ErrInvalidTransition, from)
	}
	if index < 0 || index >= len(f.results) {
		f.mu.Unlock()
		return fmt.Errorf("%w: index %d of %d", ErrNoResult, index, len(f.results))
	}
	selected := f.results[index]
	f.selected = &selected
	f.status = DetailOpen
	f.mu.Unlock()

	if f.cfg.OnDetail != nil {
		f.cfg.OnDetail(selected)
	}
	return nil
}

// CloseDetail returns from DetailOpen to ResultsReady.
func (f *Flow) CloseDetail() error {
	f.mu.Lock()
	if f.status != DetailOpen {
		from := f.status
		f.mu.Unlock()
		return fmt.Errorf("%w: close detail from %s", ErrInvalidTransition, from)
	}
	f.selected = nil
	f.status = ResultsReady
	results := cloneResults(f.results)
	f.mu.Unlock()

	if len(results) == 0 {
		if f.cfg.OnEmpty != nil {
			f.cfg.OnEmpty()
		}
		return nil
	}
	if f.cfg.OnResults != nil {
		f.cfg.OnResults(results)
	}
	return nil
}

// ResetAll returns to Idle from any state, clearing the file, results and
// selection. A search still in flight is invalidated.
func (f *Flow) ResetAll() {
	f.mu.Lock()
	f.generation++
	f.status = Idle
	f.file = nil
	f.results = nil
	f.selected = nil
	f.lastErr = nil
	f.mu.Unlock()

	if f.cfg.OnReset != nil {
		f.cfg.OnReset()
	}
}

// Status returns the current state.
func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Snapshot returns a copy of the session.
func (f *Flow) Snapshot() Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Session{
		Status:  f.status,
		Results: cloneResults(f.results),
		Err:     f.lastErr,
	}
	if f.file != nil {
		file := *f.file
		s.File = &file
	}
	if f.selected != nil {
		selected := *f.selected
		s.Selected = &selected
	}
	return s
}

func (f *Flow) debug(msg string, keyvals ...any) {
	if f.cfg.Logger != nil {
		f.cfg.Logger.Debug(msg, keyvals...)
	}
}

func (f *Flow) warn(msg string, keyvals ...any) {
	if f.cfg.Logger != nil {
		f.cfg.Logger.Warn(msg, keyvals...)
	}
}

func cloneResults(results []MatchResult) []MatchResult {
	if results == nil {
		return nil
	}
	dup := make([]MatchResult, len(results))
	copy(dup, results)
	return dup
}
