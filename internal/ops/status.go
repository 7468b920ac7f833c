package ops

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
)

// EntryStatus describes one cached dataset.
type EntryStatus struct {
	Key       string `json:"key"`
	Encoding  string `json:"encoding"`
	Size      string `json:"size"`
	Stored    string `json:"stored"`
	UpdatedAt string `json:"updated_at"`
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	CachedAt *time.Time    `json:"cached_at,omitempty"`
	Age      string        `json:"age,omitempty"`
	Fresh    bool          `json:"fresh"`
	Window   string        `json:"window"`
	Entries  []EntryStatus `json:"entries"`
	State    State         `json:"state"`
}

// Status reports cache freshness, stored entries and session state.
func (l *Library) Status(ctx context.Context) (*StatusOutput, error) {
	f, err := l.loader.Freshness(ctx)
	if err != nil {
		return nil, err
	}

	out := &StatusOutput{
		CachedAt: f.LastWrite,
		Fresh:    f.Fresh,
		Window:   f.Window.String(),
		Entries:  []EntryStatus{},
		State:    l.State(),
	}
	if f.LastWrite != nil {
		out.Age = humanize.Time(*f.LastWrite)
	}

	if l.inspector != nil {
		infos, err := l.inspector.Stat(ctx)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			out.Entries = append(out.Entries, EntryStatus{
				Key:       info.Key,
				Encoding:  info.Encoding,
				Size:      humanize.Bytes(uint64(info.Size)),
				Stored:    humanize.Bytes(uint64(info.Stored)),
				UpdatedAt: humanize.Time(time.UnixMilli(info.UpdatedAt)),
			})
		}
	}
	return out, nil
}
