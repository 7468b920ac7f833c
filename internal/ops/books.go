package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/errors"
)

// BookItem is one entry of the book list.
type BookItem struct {
	ID string `json:"id"`
	bible.Title
}

// BooksOutput contains the result of the Books operation.
type BooksOutput struct {
	Books []BookItem `json:"books"`
	State State      `json:"state"`
}

// Books lists every book in title order.
func (l *Library) Books(ctx context.Context) (*BooksOutput, error) {
	if err := l.ensureMetadata(ctx); err != nil {
		return nil, err
	}
	titles, _, _ := l.snapshot()

	items := make([]BookItem, len(titles))
	for i, t := range titles {
		items[i] = BookItem{ID: t.ID(), Title: t}
	}
	return &BooksOutput{Books: items, State: l.State()}, nil
}

// BookOutput contains the result of the Book operation.
type BookOutput struct {
	BookItem
	// ChapterIDs lists the chapters present in the corpus, in reading order.
	ChapterIDs []string  `json:"chapter_ids"`
	Verses     int       `json:"verses"`
	PrevBook   *BookItem `json:"prev_book,omitempty"`
	NextBook   *BookItem `json:"next_book,omitempty"`
	State      State     `json:"state"`
}

// Book returns one book's metadata and the chapters available for it.
func (l *Library) Book(ctx context.Context, id string) (*BookOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("book is required")
	}
	if err := l.ensureAll(ctx); err != nil {
		return nil, err
	}
	titles, _, corpus := l.snapshot()

	title, ok := bible.FindTitle(titles, id)
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("book %s not found", id))
	}
	book := corpus[id]
	verses := 0
	for _, ch := range book {
		verses += len(ch)
	}
	prevBook, nextBook := adjacentBooks(titles, id)
	return &BookOutput{
		BookItem:   BookItem{ID: id, Title: title},
		ChapterIDs: book.ChapterIDs(),
		Verses:     verses,
		PrevBook:   prevBook,
		NextBook:   nextBook,
		State:      l.State(),
	}, nil
}

// adjacentBooks returns the books either side of id in title order.
func adjacentBooks(titles []bible.Title, id string) (prev, next *BookItem) {
	p, n := bible.AdjacentBooks(titles, id)
	return bookItem(p), bookItem(n)
}

func bookItem(t *bible.Title) *BookItem {
	if t == nil {
		return nil
	}
	return &BookItem{ID: t.ID(), Title: *t}
}
