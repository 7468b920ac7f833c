package ops

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/errors"
	"github.com/hpungsan/lectio/internal/search"
)

// MaxQueryLength bounds the search term in runes.
const MaxQueryLength = 200

// DefaultView is the tracker view used when SearchInput.View is empty.
const DefaultView = "default"

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string
	Page  int // 1-based; out-of-range values are clamped
	// View identifies the consumer whose displayed results this search replaces.
	View string
}

// SearchOutput contains one page of search results.
type SearchOutput struct {
	Query      string            `json:"query"`
	Items      []search.Result   `json:"items"`
	Pagination search.Pagination `json:"pagination"`
	Empty      bool              `json:"empty,omitempty"`
	NoResults  bool              `json:"no_results,omitempty"`
	Message    string            `json:"message,omitempty"`
	// Superseded is set when a newer search for the same view was issued
	// before this one finished.
	Superseded bool  `json:"superseded,omitempty"`
	State      State `json:"state"`
}

// Search runs a case-insensitive substring search and returns the requested page.
func (l *Library) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest("query is too long")
	}
	view := input.View
	if view == "" {
		view = DefaultView
	}

	// A blank term needs no data; it only clears the view.
	var titles []bible.Title
	var corpus bible.Corpus
	if query != "" {
		if err := l.ensureAll(ctx); err != nil {
			return nil, err
		}
		titles, _, corpus = l.snapshot()
	}

	tk, sctx := l.tracker.Issue(ctx, view, query)
	res, err := search.SearchContext(sctx, corpus, titles, query)
	if err != nil {
		l.tracker.Deliver(tk, nil)
		if ctx.Err() != nil {
			return nil, errors.NewInternal(ctx.Err())
		}
		l.logger.Debug("search superseded", "view", view, "query", query)
		return &SearchOutput{Query: query, Items: []search.Result{}, Superseded: true, State: l.State()}, nil
	}
	current := l.tracker.Deliver(tk, res)

	items, page := search.Paginate(res.Items, input.Page, search.PageSize)
	return &SearchOutput{
		Query:      res.Term,
		Items:      items,
		Pagination: page,
		Empty:      res.Empty,
		NoResults:  res.NoResults,
		Message:    res.Message,
		Superseded: !current,
		State:      l.State(),
	}, nil
}
