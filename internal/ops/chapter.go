package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/errors"
)

// ChapterInput contains parameters for the Chapter operation.
type ChapterInput struct {
	Book    string // required
	Chapter string // required
	// Markdown also renders the chapter as markdown.
	Markdown bool
}

// VerseItem is a verse with the headings that precede it.
type VerseItem struct {
	Verse    int             `json:"v"`
	Text     string          `json:"t"`
	Headings []bible.Heading `json:"headings,omitempty"`
}

// ChapterOutput contains the result of the Chapter operation.
type ChapterOutput struct {
	Book     BookItem    `json:"book"`
	Chapter  string      `json:"chapter"`
	Verses   []VerseItem `json:"verses"`
	Prev     int         `json:"prev,omitempty"`
	Next     int         `json:"next,omitempty"`
	PrevBook *BookItem   `json:"prev_book,omitempty"`
	NextBook *BookItem   `json:"next_book,omitempty"`
	Markdown string      `json:"markdown,omitempty"`
	State    State       `json:"state"`
}

// Chapter returns one chapter with headings attached, its neighbouring
// chapters and the books either side of it.
func (l *Library) Chapter(ctx context.Context, input ChapterInput) (*ChapterOutput, error) {
	bookID := strings.TrimSpace(input.Book)
	chapterID := strings.TrimSpace(input.Chapter)
	if bookID == "" {
		return nil, errors.NewInvalidRequest("book is required")
	}
	if chapterID == "" {
		return nil, errors.NewInvalidRequest("chapter is required")
	}

	if err := l.ensureAll(ctx); err != nil {
		return nil, err
	}
	titles, headings, corpus := l.snapshot()

	title, ok := bible.FindTitle(titles, bookID)
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("book %s not found", bookID))
	}
	verses, ok := corpus.Chapter(bookID, chapterID)
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("chapter %s not found in %s", chapterID, title.Name))
	}

	items := make([]VerseItem, len(verses))
	for i, v := range verses {
		items[i] = VerseItem{
			Verse:    v.Verse,
			Text:     v.Text,
			Headings: headings.For(bookID, chapterID, v.Verse),
		}
	}
	prev, next := bible.Neighbors(title, chapterID)
	prevBook, nextBook := adjacentBooks(titles, bookID)

	out := &ChapterOutput{
		Book:     BookItem{ID: bookID, Title: title},
		Chapter:  chapterID,
		Verses:   items,
		Prev:     prev,
		Next:     next,
		PrevBook: prevBook,
		NextBook: nextBook,
		State:    l.State(),
	}
	if input.Markdown {
		out.Markdown = bible.ChapterMarkdown(title, chapterID, verses, headings)
	}
	return out, nil
}
