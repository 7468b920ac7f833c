// Package ops holds the in-memory reading session and the operations the CLI,
// MCP server and web UI expose on top of it.
package ops

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sync"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/config"
	"github.com/hpungsan/lectio/internal/db"
	"github.com/hpungsan/lectio/internal/errors"
	"github.com/hpungsan/lectio/internal/loader"
	"github.com/hpungsan/lectio/internal/search"
)

// StaleNotice is shown while expired cached data is in use.
const StaleNotice = "Showing outdated offline data."

// Loader is the data loader the Library drives.
type Loader interface {
	LoadMetadata(ctx context.Context, force bool) (*loader.Metadata, error)
	LoadBody(ctx context.Context) (*loader.Body, error)
	Clear(ctx context.Context) error
	Freshness(ctx context.Context) (loader.Freshness, error)
}

// Inspector lists stored cache entries.
type Inspector interface {
	Stat(ctx context.Context) ([]db.EntryInfo, error)
}

// State is the observable session state. Data and error are reported
// together: a failed refresh does not hide data already loaded.
type State struct {
	Loading   bool   `json:"loading"`
	Titles    int    `json:"titles"`
	Headings  int    `json:"headings"`
	Books     int    `json:"books"`
	Verses    int    `json:"verses"`
	Stale     bool   `json:"stale"`
	Notice    string `json:"notice,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithRand overrides the random source used by Random. intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(l *Library) { l.intn = intn }
}

// WithExportsDir overrides the default exports directory.
func WithExportsDir(dir string) Option {
	return func(l *Library) { l.exportsDir = dir }
}

// Library holds the last known good titles, headings and corpus for one session.
type Library struct {
	loader     Loader
	inspector  Inspector
	cfg        *config.Config
	exportsDir string
	logger     *slog.Logger
	intn       func(int) int
	tracker    *search.Tracker

	mu         sync.RWMutex
	titles     []bible.Title
	headings   []bible.Heading
	headingIdx bible.HeadingIndex
	corpus     bible.Corpus
	metaStale  bool
	bodyStale  bool
	metaErr    error
	bodyErr    error
	loading    int
	// clears counts ClearCache calls; loads that span one are discarded.
	clears uint64
}

// NewLibrary creates an empty session. baseDir is the lectio home (~/.lectio);
// exports go to baseDir/exports unless overridden.
func NewLibrary(ld Loader, inspector Inspector, cfg *config.Config, baseDir string, opts ...Option) *Library {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	l := &Library{
		loader:     ld,
		inspector:  inspector,
		cfg:        cfg,
		exportsDir: filepath.Join(baseDir, "exports"),
		logger:     slog.Default(),
		intn:       rand.IntN,
		tracker:    search.NewTracker(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tracker returns the session's search tracker.
func (l *Library) Tracker() *search.Tracker {
	return l.tracker
}

// State returns a snapshot of the session.
func (l *Library) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stateLocked()
}

func (l *Library) stateLocked() State {
	s := State{
		Loading:  l.loading > 0,
		Titles:   len(l.titles),
		Headings: len(l.headings),
		Books:    len(l.corpus),
		Verses:   l.corpus.VerseCount(),
		Stale:    l.metaStale || l.bodyStale,
	}
	if s.Stale {
		s.Notice = StaleNotice
	}
	// Metadata errors take precedence; they affect every view
	err := l.metaErr
	if err == nil {
		err = l.bodyErr
	}
	if err != nil {
		s.Error = err.Error()
		if lErr, ok := errors.As(err); ok {
			s.Error = lErr.Message
			s.ErrorCode = string(lErr.Code)
		}
	}
	return s
}

// beginLoad marks a load in progress and returns the current clear count.
func (l *Library) beginLoad() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading++
	return l.clears
}

func (l *Library) endLoad() {
	l.mu.Lock()
	l.loading--
	l.mu.Unlock()
}

// ensureMetadata loads titles and headings if none are in memory. It fails
// only when nothing usable could be loaded.
func (l *Library) ensureMetadata(ctx context.Context) error {
	l.mu.RLock()
	have := l.titles != nil
	l.mu.RUnlock()
	if have {
		return nil
	}
	if _, err := l.loadMetadata(ctx, false); err != nil {
		l.mu.RLock()
		have = l.titles != nil
		l.mu.RUnlock()
		if !have {
			return err
		}
		l.logger.Warn("metadata loaded with error", "error", err)
	}
	return nil
}

// ensureBody loads the corpus if it is not in memory.
func (l *Library) ensureBody(ctx context.Context) error {
	if err := l.LoadBody(ctx); err != nil {
		l.mu.RLock()
		have := l.corpus != nil
		l.mu.RUnlock()
		if !have {
			return err
		}
		l.logger.Warn("body loaded with error", "error", err)
	}
	return nil
}

// ensureAll loads metadata and body concurrently; they fail independently.
func (l *Library) ensureAll(ctx context.Context) error {
	metaDone := make(chan error, 1)
	go func() { metaDone <- l.ensureMetadata(ctx) }()
	bodyErr := l.ensureBody(ctx)
	if err := <-metaDone; err != nil {
		return err
	}
	return bodyErr
}

// snapshot returns the current data. Slices and maps are replaced wholesale,
// never mutated, so callers may read them without holding the lock.
func (l *Library) snapshot() ([]bible.Title, bible.HeadingIndex, bible.Corpus) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.titles, l.headingIdx, l.corpus
}
