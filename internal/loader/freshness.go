package loader

import "time"

// DefaultWindow is how long cached data counts as fresh.
const DefaultWindow = 24 * time.Hour

// Policy decides whether cached datasets are fresh enough to skip the network.
type Policy struct {
	Window time.Duration
}

// NewPolicy returns a Policy with the given window. A non-positive window means DefaultWindow.
func NewPolicy(window time.Duration) Policy {
	if window <= 0 {
		window = DefaultWindow
	}
	return Policy{Window: window}
}

// Fresh reports whether a cache written at lastWriteMs (epoch milliseconds) is
// still fresh at now. A nil timestamp is always stale.
func (p Policy) Fresh(lastWriteMs *int64, now time.Time) bool {
	if lastWriteMs == nil {
		return false
	}
	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}
	return now.UnixMilli()-*lastWriteMs <= window.Milliseconds()
}
