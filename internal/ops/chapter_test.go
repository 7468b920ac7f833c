package ops

import (
	"context"
	"strings"
	"testing"

	"github.com/hpungsan/lectio/internal/errors"
)

func TestChapter_VersesWithHeadings(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.lib.Chapter(context.Background(), ChapterInput{Book: "1", Chapter: "1"})
	if err != nil {
		t.Fatalf("Chapter() error = %v", err)
	}
	if out.Book.Name != "Genesis" || out.Chapter != "1" {
		t.Errorf("Chapter() = %s %s", out.Book.Name, out.Chapter)
	}
	if len(out.Verses) != 2 || out.Verses[0].Verse != 1 || out.Verses[1].Verse != 2 {
		t.Fatalf("Verses = %+v, want 1 then 2", out.Verses)
	}
	if len(out.Verses[0].Headings) != 1 || out.Verses[0].Headings[0].Heading != "The Creation" {
		t.Errorf("Verses[0].Headings = %+v", out.Verses[0].Headings)
	}
	if out.Prev != 0 || out.Next != 2 {
		t.Errorf("Prev/Next = %d/%d, want 0/2", out.Prev, out.Next)
	}
	if out.Markdown != "" {
		t.Error("Markdown should be empty unless requested")
	}
}

func TestChapter_BookScopedHeading(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.lib.Chapter(context.Background(), ChapterInput{Book: "2", Chapter: "1", Markdown: true})
	if err != nil {
		t.Fatalf("Chapter() error = %v", err)
	}
	// The unscoped heading for 1:1 applies too, followed by the book 2 heading
	if len(out.Verses[0].Headings) != 2 {
		t.Errorf("Headings = %+v, want 2", out.Verses[0].Headings)
	}
	if !strings.Contains(out.Markdown, "### Israel in Egypt") {
		t.Errorf("Markdown = %q", out.Markdown)
	}
	if out.Prev != 0 || out.Next != 2 {
		t.Errorf("Prev/Next = %d/%d, want 0/2", out.Prev, out.Next)
	}
}

func TestChapter_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input ChapterInput
		code  errors.ErrorCode
	}{
		{"missing book", ChapterInput{Chapter: "1"}, errors.ErrInvalidRequest},
		{"missing chapter", ChapterInput{Book: "1"}, errors.ErrInvalidRequest},
		{"unknown book", ChapterInput{Book: "42", Chapter: "1"}, errors.ErrNotFound},
		{"untitled book", ChapterInput{Book: "99", Chapter: "1"}, errors.ErrNotFound},
		{"unknown chapter", ChapterInput{Book: "1", Chapter: "3"}, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.lib.Chapter(ctx, tt.input)
			if !errors.Is(err, tt.code) {
				t.Errorf("Chapter() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBook(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.lib.Book(context.Background(), "1")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if out.Name != "Genesis" || out.Chapters != 3 {
		t.Errorf("Book() = %+v", out.BookItem)
	}
	if len(out.ChapterIDs) != 2 || out.ChapterIDs[0] != "1" || out.Verses != 3 {
		t.Errorf("ChapterIDs = %v, Verses = %d", out.ChapterIDs, out.Verses)
	}

	if _, err := env.lib.Book(context.Background(), "7"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Book(7) error = %v, want NOT_FOUND", err)
	}
}

func TestChapter_AdjacentBooks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.lib.Chapter(ctx, ChapterInput{Book: "1", Chapter: "1"})
	if err != nil {
		t.Fatalf("Chapter() error = %v", err)
	}
	if first.PrevBook != nil {
		t.Errorf("PrevBook = %+v, want none before the first book", first.PrevBook)
	}
	if first.NextBook == nil || first.NextBook.ID != "2" || first.NextBook.Name != "Exodus" {
		t.Errorf("NextBook = %+v, want Exodus", first.NextBook)
	}

	last, err := env.lib.Chapter(ctx, ChapterInput{Book: "2", Chapter: "1"})
	if err != nil {
		t.Fatalf("Chapter() error = %v", err)
	}
	if last.PrevBook == nil || last.PrevBook.ID != "1" {
		t.Errorf("PrevBook = %+v, want Genesis", last.PrevBook)
	}
	if last.NextBook != nil {
		t.Errorf("NextBook = %+v, want none after the last book", last.NextBook)
	}
}

func TestBook_AdjacentBooks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.lib.Book(ctx, "2")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if out.PrevBook == nil || out.PrevBook.Name != "Genesis" || out.NextBook != nil {
		t.Errorf("PrevBook/NextBook = %+v/%+v, want Genesis/none", out.PrevBook, out.NextBook)
	}

	out, err = env.lib.Book(ctx, "1")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if out.PrevBook != nil || out.NextBook == nil || out.NextBook.Name != "Exodus" {
		t.Errorf("PrevBook/NextBook = %+v/%+v, want none/Exodus", out.PrevBook, out.NextBook)
	}
}
