package ops

import (
	"context"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/errors"
)

// RandomOutput contains a randomly chosen verse.
type RandomOutput struct {
	bible.Ref
	BookName string `json:"book_name"`
	Text     string `json:"text"`
}

// Random picks a verse uniformly by book, then chapter, then verse.
func (l *Library) Random(ctx context.Context) (*RandomOutput, error) {
	if err := l.ensureAll(ctx); err != nil {
		return nil, err
	}
	titles, _, corpus := l.snapshot()

	// Only books with a title can be navigated to
	titled := make(bible.Corpus, len(corpus))
	for _, t := range titles {
		if book, ok := corpus[t.ID()]; ok {
			titled[t.ID()] = book
		}
	}

	ref, ok := titled.Random(l.intn)
	if !ok {
		return nil, errors.NewNotFound("no verses loaded")
	}
	title, _ := bible.FindTitle(titles, ref.Book)

	out := &RandomOutput{Ref: ref, BookName: title.Name}
	ch, _ := corpus.Chapter(ref.Book, ref.Chapter)
	for _, v := range ch {
		if v.Verse == ref.Verse {
			out.Text = v.Text
			break
		}
	}
	return out, nil
}
