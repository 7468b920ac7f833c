// Package loader serves the titles, headings and body datasets from the durable
// store when fresh, and from the network otherwise.
package loader

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/db"
	"github.com/hpungsan/lectio/internal/errors"
)

// Store keys.
const (
	KeyTitles    = "titles"
	KeyHeadings  = "headings"
	KeyBody      = "body"
	KeyTimestamp = "timestamp"
)

// Store is the subset of the durable store the loader needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutMany(ctx context.Context, entries ...db.Entry) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

// Metadata is the result of a metadata load.
type Metadata struct {
	Titles   []bible.Title
	Headings []bible.Heading

	// FromCache is set when the data came from the store rather than the network.
	FromCache bool
	// Stale is set when the network failed and expired cached data was used instead.
	Stale bool
	// Superseded is set when a newer refresh was issued before this one
	// finished. The data is valid but was not persisted.
	Superseded bool
	// Generation identifies the network refresh that produced the data.
	Generation string
	// Skipped counts records dropped during decoding.
	Skipped int
}

// Body is the result of a body load.
type Body struct {
	Corpus    bible.Corpus
	FromCache bool
	Stale     bool
	Skipped   int
}

// Freshness describes the shared cache timestamp.
type Freshness struct {
	LastWrite *time.Time
	Fresh     bool
	Window    time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// Loader orchestrates cache reads, network fetches and cache writes.
type Loader struct {
	store  Store
	source Source
	policy Policy
	now    func() time.Time
	logger *slog.Logger

	// genMu guards the generation state. persistMu serializes the
	// latest-generation check with the store write that depends on it.
	// latest is the newest generation that has not failed; settled is the
	// newest one that committed or cleared the store.
	genMu     sync.Mutex
	entropy   io.Reader
	latest    ulid.ULID
	settled   ulid.ULID
	inflight  map[ulid.ULID]struct{}
	clears    uint64
	persistMu sync.Mutex

	body singleflight.Group
}

// New creates a Loader over an opened store.
func New(store Store, source Source, policy Policy, opts ...Option) *Loader {
	l := &Loader{
		store:   store,
		source:  source,
		policy:  policy,
		now:     time.Now,
		logger:  slog.Default(),
		entropy:  ulid.Monotonic(rand.Reader, 0),
		inflight: make(map[ulid.ULID]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the freshness policy in use.
func (l *Loader) Policy() Policy {
	return l.policy
}

// LoadMetadata returns titles and headings. Unless force is set, fresh cached
// data is returned without touching the network. A non-nil error may accompany
// usable data: PersistFailed after a successful fetch, or a fetch error when
// stale cached data was substituted.
func (l *Loader) LoadMetadata(ctx context.Context, force bool) (*Metadata, error) {
	if !force {
		md, err := l.cachedMetadata(ctx)
		switch {
		case err != nil && errors.Is(err, errors.ErrParseFailed):
			l.logger.Warn("cached metadata unreadable, evicting", "error", err)
			if err := l.store.Delete(ctx, KeyTitles, KeyHeadings, KeyTimestamp); err != nil {
				l.logger.Warn("evict metadata failed", "error", err)
			}
		case err != nil:
			l.logger.Warn("cache read failed", "error", err)
		case md != nil:
			l.logger.Debug("metadata cache hit", "titles", len(md.Titles), "headings", len(md.Headings))
			return md, nil
		}
	}
	return l.fetchMetadata(ctx)
}

// Refresh bypasses the cache and fetches metadata from the network.
func (l *Loader) Refresh(ctx context.Context) (*Metadata, error) {
	return l.LoadMetadata(ctx, true)
}

// LoadBody returns the structured corpus. Concurrent callers share one load,
// which runs to completion even if the caller that started it goes away; each
// caller stops waiting when its own ctx is done.
func (l *Loader) LoadBody(ctx context.Context) (*Body, error) {
	shared := context.WithoutCancel(ctx)
	ch := l.body.DoChan(KeyBody, func() (any, error) {
		return l.loadBody(shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		body, _ := r.Val.(*Body)
		return body, r.Err
	}
}

// Clear wipes the store. Refreshes still in flight will not persist their results.
func (l *Loader) Clear(ctx context.Context) error {
	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	l.genMu.Lock()
	l.settled = l.newGenerationLocked()
	l.clears++
	l.genMu.Unlock()

	if err := l.store.Clear(ctx); err != nil {
		return err
	}
	l.logger.Info("cache cleared")
	return nil
}

// Freshness reports the shared cache timestamp and whether it is fresh now.
func (l *Loader) Freshness(ctx context.Context) (Freshness, error) {
	ts, err := l.timestamp(ctx)
	f := Freshness{Window: l.policy.Window, Fresh: l.policy.Fresh(ts, l.now())}
	if ts != nil {
		t := time.UnixMilli(*ts)
		f.LastWrite = &t
	}
	return f, err
}

func (l *Loader) cachedMetadata(ctx context.Context) (*Metadata, error) {
	ts, err := l.timestamp(ctx)
	if err != nil {
		return nil, err
	}
	if !l.policy.Fresh(ts, l.now()) {
		l.logger.Debug("metadata cache stale or missing")
		return nil, nil
	}
	return l.readMetadata(ctx)
}

// readMetadata reads both metadata datasets regardless of freshness.
// Returns (nil, nil) when either is absent.
func (l *Loader) readMetadata(ctx context.Context) (*Metadata, error) {
	rawTitles, err := l.store.Get(ctx, KeyTitles)
	if err != nil {
		return nil, err
	}
	rawHeadings, err := l.store.Get(ctx, KeyHeadings)
	if err != nil {
		return nil, err
	}
	if rawTitles == nil || rawHeadings == nil {
		return nil, nil
	}

	md, err := decodeMetadata(rawTitles, rawHeadings)
	if err != nil {
		return nil, err
	}
	md.FromCache = true
	return md, nil
}

func (l *Loader) fetchMetadata(ctx context.Context) (*Metadata, error) {
	gen := l.beginGeneration()
	committed := false
	retire := sync.OnceFunc(func() { l.endGeneration(gen, committed) })
	defer retire()
	log := l.logger.With("generation", gen.String())

	var rawTitles, rawHeadings []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := l.source.Fetch(gctx, DatasetTitles)
		if err != nil {
			return errors.NewNetworkFetchFailed(string(DatasetTitles), err)
		}
		rawTitles = b
		return nil
	})
	g.Go(func() error {
		b, err := l.source.Fetch(gctx, DatasetHeadings)
		if err != nil {
			return errors.NewNetworkFetchFailed(string(DatasetHeadings), err)
		}
		rawHeadings = b
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn("metadata fetch failed", "error", err)
		return l.staleMetadata(ctx, err)
	}

	md, err := decodeMetadata(rawTitles, rawHeadings)
	if err != nil {
		log.Warn("fetched metadata unreadable", "error", err)
		return l.staleMetadata(ctx, err)
	}
	md.Generation = gen.String()
	if md.Skipped > 0 {
		log.Warn("dropped invalid metadata records", "count", md.Skipped)
	}

	titlesJSON, err := json.Marshal(md.Titles)
	if err != nil {
		return md, errors.NewInternal(err)
	}
	headingsJSON, err := json.Marshal(md.Headings)
	if err != nil {
		return md, errors.NewInternal(err)
	}

	l.persistMu.Lock()
	defer l.persistMu.Unlock()
	// Retire before unlocking so an older refresh waiting here sees the outcome.
	defer retire()

	if !l.isLatest(gen) {
		log.Info("refresh superseded, discarding")
		md.Superseded = true
		return md, nil
	}

	// Datasets and the timestamp commit together so they always describe the same refresh.
	err = l.store.PutMany(ctx,
		db.Entry{Key: KeyTitles, Value: titlesJSON},
		db.Entry{Key: KeyHeadings, Value: headingsJSON},
		db.Entry{Key: KeyTimestamp, Value: []byte(strconv.FormatInt(l.now().UnixMilli(), 10))},
	)
	if err != nil {
		log.Warn("persist metadata failed", "error", err)
		return md, err
	}
	committed = true
	log.Info("metadata refreshed", "titles", len(md.Titles), "headings", len(md.Headings))
	return md, nil
}

// staleMetadata substitutes expired cached metadata after a failed fetch.
func (l *Loader) staleMetadata(ctx context.Context, cause error) (*Metadata, error) {
	md, err := l.readMetadata(ctx)
	if err != nil || md == nil {
		if err != nil {
			l.logger.Warn("stale metadata unreadable", "error", err)
		}
		return nil, errors.NewDataUnavailable("metadata", cause)
	}
	md.Stale = true
	l.logger.Info("serving stale metadata", "titles", len(md.Titles))
	return md, cause
}

func (l *Loader) loadBody(ctx context.Context) (*Body, error) {
	l.genMu.Lock()
	clears := l.clears
	l.genMu.Unlock()

	ts, err := l.timestamp(ctx)
	if err != nil {
		l.logger.Warn("cache read failed", "error", err)
	}
	if l.policy.Fresh(ts, l.now()) {
		corpus, err := l.readBody(ctx)
		switch {
		case err != nil && errors.Is(err, errors.ErrParseFailed):
			l.logger.Warn("cached body unreadable, evicting", "error", err)
			if err := l.store.Delete(ctx, KeyBody); err != nil {
				l.logger.Warn("evict body failed", "error", err)
			}
		case err != nil:
			l.logger.Warn("cache read failed", "error", err)
		case corpus != nil:
			l.logger.Debug("body cache hit", "books", len(corpus))
			return &Body{Corpus: corpus, FromCache: true}, nil
		}
	}

	raw, err := l.source.Fetch(ctx, DatasetBody)
	if err != nil {
		fetchErr := errors.NewNetworkFetchFailed(string(DatasetBody), err)
		l.logger.Warn("body fetch failed", "error", fetchErr)
		return l.staleBody(ctx, fetchErr)
	}

	verses, skipped, err := bible.DecodeVerses(raw)
	if err != nil {
		parseErr := errors.NewParseFailed(KeyBody, err)
		l.logger.Warn("fetched body unreadable", "error", parseErr)
		return l.staleBody(ctx, parseErr)
	}
	if skipped > 0 {
		l.logger.Warn("dropped invalid verse records", "count", skipped)
	}
	body := &Body{Corpus: bible.Structure(verses), Skipped: skipped}

	data, err := json.Marshal(body.Corpus)
	if err != nil {
		return body, errors.NewInternal(err)
	}

	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	l.genMu.Lock()
	cleared := l.clears != clears
	l.genMu.Unlock()
	if cleared {
		l.logger.Info("cache cleared during body load, not persisting")
		return body, nil
	}

	if err := l.store.PutMany(ctx, db.Entry{Key: KeyBody, Value: data}); err != nil {
		l.logger.Warn("persist body failed", "error", err)
		return body, err
	}
	l.logger.Info("body fetched", "books", len(body.Corpus), "verses", len(verses))
	return body, nil
}

func (l *Loader) readBody(ctx context.Context) (bible.Corpus, error) {
	raw, err := l.store.Get(ctx, KeyBody)
	if err != nil || raw == nil {
		return nil, err
	}
	corpus, err := bible.DecodeCorpus(raw)
	if err != nil {
		return nil, errors.NewParseFailed(KeyBody, err)
	}
	return corpus, nil
}

func (l *Loader) staleBody(ctx context.Context, cause error) (*Body, error) {
	corpus, err := l.readBody(ctx)
	if err != nil || corpus == nil {
		if err != nil {
			l.logger.Warn("stale body unreadable", "error", err)
		}
		return nil, errors.NewDataUnavailable("body", cause)
	}
	l.logger.Info("serving stale body", "books", len(corpus))
	return &Body{Corpus: corpus, FromCache: true, Stale: true}, cause
}

// timestamp reads the shared cache timestamp. An unparsable value is evicted
// and treated as absent.
func (l *Loader) timestamp(ctx context.Context) (*int64, error) {
	raw, err := l.store.Get(ctx, KeyTimestamp)
	if err != nil {
		if errors.Is(err, errors.ErrParseFailed) {
			_ = l.store.Delete(ctx, KeyTimestamp)
			return nil, nil
		}
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		l.logger.Warn("invalid cache timestamp, evicting", "value", string(raw))
		_ = l.store.Delete(ctx, KeyTimestamp)
		return nil, nil
	}
	return &ms, nil
}

// beginGeneration issues a generation for a network refresh. It supersedes
// every refresh already in flight.
func (l *Loader) beginGeneration() ulid.ULID {
	l.genMu.Lock()
	defer l.genMu.Unlock()
	gen := l.newGenerationLocked()
	l.inflight[gen] = struct{}{}
	return gen
}

// endGeneration retires gen. When the latest refresh fails, the newest refresh
// still in flight after the last settled one becomes latest again, so its data
// is not thrown away.
func (l *Loader) endGeneration(gen ulid.ULID, committed bool) {
	l.genMu.Lock()
	defer l.genMu.Unlock()
	delete(l.inflight, gen)
	if l.latest != gen {
		return
	}
	if committed {
		l.settled = gen
		return
	}
	l.latest = l.settled
	for g := range l.inflight {
		if g.Compare(l.latest) > 0 {
			l.latest = g
		}
	}
}

func (l *Loader) newGenerationLocked() ulid.ULID {
	l.latest = ulid.MustNew(ulid.Timestamp(l.now()), l.entropy)
	return l.latest
}

func (l *Loader) isLatest(gen ulid.ULID) bool {
	l.genMu.Lock()
	defer l.genMu.Unlock()
	return l.latest == gen
}

func decodeMetadata(rawTitles, rawHeadings []byte) (*Metadata, error) {
	titles, skippedTitles, err := bible.DecodeTitles(rawTitles)
	if err != nil {
		return nil, errors.NewParseFailed(KeyTitles, err)
	}
	headings, skippedHeadings, err := bible.DecodeHeadings(rawHeadings)
	if err != nil {
		return nil, errors.NewParseFailed(KeyHeadings, err)
	}
	bible.SortTitles(titles)
	return &Metadata{
		Titles:   titles,
		Headings: headings,
		Skipped:  skippedTitles + skippedHeadings,
	}, nil
}
