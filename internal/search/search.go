// Package search implements case-insensitive substring search over a
// structured corpus, plus pagination of the ordered results.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/lectio/internal/bible"
)

// Result is one matching verse.
type Result struct {
	Book     string `json:"b"`
	Chapter  string `json:"c"`
	Verse    int    `json:"v"`
	Text     string `json:"t"`
	BookName string `json:"bookName"`
}

// Results is the full ordered match list for one term.
type Results struct {
	// Term is the trimmed query.
	Term  string   `json:"term"`
	Items []Result `json:"items"`
	// Empty is set when the term was blank. No search was run.
	Empty bool `json:"empty,omitempty"`
	// NoResults is set when a non-blank term matched nothing.
	NoResults bool   `json:"no_results,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Search scans every verse of every titled book for term. Results follow
// corpus order: book, then chapter, then verse. Books with no matching title
// are skipped.
func Search(corpus bible.Corpus, titles []bible.Title, term string) *Results {
	res, _ := SearchContext(context.Background(), corpus, titles, term)
	return res
}

// SearchContext is Search with cancellation checked between chapters.
// On cancellation it returns nil and ctx.Err().
func SearchContext(ctx context.Context, corpus bible.Corpus, titles []bible.Title, term string) (*Results, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return &Results{Items: []Result{}, Empty: true}, nil
	}
	needle := strings.ToLower(trimmed)

	items := []Result{}
	for _, bookID := range corpus.BookIDs() {
		title, ok := bible.FindTitle(titles, bookID)
		if !ok {
			continue
		}
		book := corpus[bookID]
		for _, chapterID := range book.ChapterIDs() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, v := range book[chapterID] {
				if strings.Contains(strings.ToLower(v.Text), needle) {
					items = append(items, Result{
						Book:     bookID,
						Chapter:  chapterID,
						Verse:    v.Verse,
						Text:     v.Text,
						BookName: title.Name,
					})
				}
			}
		}
	}

	res := &Results{Term: trimmed, Items: items}
	if len(items) == 0 {
		res.NoResults = true
		res.Message = NoResultsMessage(trimmed)
	}
	return res, nil
}

// NoResultsMessage is shown when a term matched nothing.
func NoResultsMessage(term string) string {
	return fmt.Sprintf("No results found for %q.", term)
}
