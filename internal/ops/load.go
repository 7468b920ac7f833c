package ops

import (
	"context"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/loader"
)

// LoadOutput contains the result of Load and Refresh.
type LoadOutput struct {
	State
	FromCache  bool   `json:"from_cache"`
	Superseded bool   `json:"superseded,omitempty"`
	Generation string `json:"generation,omitempty"`
}

// Load loads titles and headings, from the cache when fresh. The returned
// error, if any, is also recorded in the output State; data already in memory
// is kept.
func (l *Library) Load(ctx context.Context) (*LoadOutput, error) {
	return l.loadMetadata(ctx, false)
}

// Refresh refetches titles and headings from the network.
func (l *Library) Refresh(ctx context.Context) (*LoadOutput, error) {
	return l.loadMetadata(ctx, true)
}

func (l *Library) loadMetadata(ctx context.Context, force bool) (*LoadOutput, error) {
	clears := l.beginLoad()
	md, err := l.loader.LoadMetadata(ctx, force)
	l.endLoad()

	l.mu.Lock()
	defer l.mu.Unlock()

	out := &LoadOutput{}
	if l.clears != clears {
		l.logger.Debug("cache cleared during metadata load, discarding")
		out.Superseded = md != nil
		out.State = l.stateLocked()
		return out, err
	}
	if md != nil {
		out.FromCache = md.FromCache
		out.Superseded = md.Superseded
		out.Generation = md.Generation
		l.adoptMetadataLocked(md)
	}
	l.metaErr = err
	out.State = l.stateLocked()
	return out, err
}

// adoptMetadataLocked replaces titles and headings with md. Superseded results
// are ignored, and stale results only fill an empty session.
func (l *Library) adoptMetadataLocked(md *loader.Metadata) {
	if md.Superseded {
		return
	}
	if md.Stale && l.titles != nil {
		return
	}
	l.titles = md.Titles
	if l.titles == nil {
		l.titles = []bible.Title{}
	}
	l.headings = md.Headings
	l.headingIdx = bible.IndexHeadings(md.Headings)
	l.metaStale = md.Stale
}

// LoadBody loads the corpus unless it is already in memory.
func (l *Library) LoadBody(ctx context.Context) error {
	l.mu.RLock()
	have := l.corpus != nil
	l.mu.RUnlock()
	if have {
		return nil
	}

	clears := l.beginLoad()
	body, err := l.loader.LoadBody(ctx)
	l.endLoad()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.clears != clears {
		l.logger.Debug("cache cleared during body load, discarding")
		return err
	}
	if ctx.Err() != nil && body == nil {
		// The caller gave up; the shared load may still finish for others.
		return err
	}
	if body != nil && (l.corpus == nil || !body.Stale) {
		l.corpus = body.Corpus
		if l.corpus == nil {
			l.corpus = bible.Corpus{}
		}
		l.bodyStale = body.Stale
		if body.Skipped > 0 {
			l.logger.Info("corpus loaded with invalid records dropped", "skipped", body.Skipped)
		}
	}
	l.bodyErr = err
	return err
}
