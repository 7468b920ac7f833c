package search

import (
	"context"
	"sync"
)

// Ticket identifies one issued search for a view.
type Ticket struct {
	View  string
	Query string
	seq   uint64
}

// MaxViews bounds the number of views a Tracker remembers. Issuing a ticket
// for a new view beyond it evicts the view issued least recently.
const MaxViews = 256

type viewState struct {
	seq    uint64
	cancel context.CancelFunc
	result *Results
	query  string
}

// Tracker keeps the displayed result of each view last-write-wins: a result
// is only accepted if its ticket is still the newest one issued for the view.
// Issuing a ticket cancels the context of the one it replaces.
type Tracker struct {
	mu    sync.Mutex
	seq   uint64
	max   int
	views map[string]*viewState
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{max: MaxViews, views: make(map[string]*viewState)}
}

// Issue starts a search of query for view. The returned context is cancelled
// when a newer ticket is issued for the same view.
func (t *Tracker) Issue(ctx context.Context, view, query string) (Ticket, context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	st, ok := t.views[view]
	if !ok {
		if len(t.views) >= t.max {
			t.evictOldestLocked()
		}
		st = &viewState{}
		t.views[view] = st
	}
	if st.cancel != nil {
		st.cancel()
	}
	st.seq = t.seq
	st.cancel = cancel
	return Ticket{View: view, Query: query, seq: t.seq}, ctx
}

// Deliver records res for the ticket's view if the ticket is still current.
// A nil res only releases the ticket. Returns false for superseded tickets.
func (t *Tracker) Deliver(tk Ticket, res *Results) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.views[tk.View]
	if !ok || st.seq != tk.seq {
		return false
	}
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	if res != nil {
		st.result = res
		st.query = tk.Query
	}
	return true
}

// Latest returns the last delivered results for view and the query that produced them.
func (t *Tracker) Latest(view string) (*Results, string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.views[view]
	if !ok || st.result == nil {
		return nil, "", false
	}
	return st.result, st.query, true
}

// evictOldestLocked drops the view whose last ticket is oldest, cancelling
// its pending search.
func (t *Tracker) evictOldestLocked() {
	var oldest string
	var oldestSeq uint64
	for view, st := range t.views {
		if oldestSeq == 0 || st.seq < oldestSeq {
			oldest, oldestSeq = view, st.seq
		}
	}
	if st, ok := t.views[oldest]; ok {
		if st.cancel != nil {
			st.cancel()
		}
		delete(t.views, oldest)
	}
}

// Reset forgets every view. Pending tickets become superseded.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, st := range t.views {
		if st.cancel != nil {
			st.cancel()
		}
	}
	t.views = make(map[string]*viewState)
}
