package ops

import "context"

// ClearOutput contains the result of the ClearCache operation.
type ClearOutput struct {
	Cleared bool  `json:"cleared"`
	State   State `json:"state"`
}

// ClearCache wipes the durable store and every piece of in-memory state,
// including displayed search results.
func (l *Library) ClearCache(ctx context.Context) (*ClearOutput, error) {
	if err := l.loader.Clear(ctx); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.clears++
	l.titles = nil
	l.headings = nil
	l.headingIdx = nil
	l.corpus = nil
	l.metaStale = false
	l.bodyStale = false
	l.metaErr = nil
	l.bodyErr = nil
	state := l.stateLocked()
	l.mu.Unlock()

	l.tracker.Reset()
	return &ClearOutput{Cleared: true, State: state}, nil
}
