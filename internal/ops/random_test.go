package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/lectio/internal/errors"
)

func TestRandom_PicksTitledVerse(t *testing.T) {
	first := func(int) int { return 0 }
	env := newTestEnv(t, WithRand(first))

	out, err := env.lib.Random(context.Background())
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if out.Book != "1" || out.Chapter != "1" || out.Verse != 1 {
		t.Errorf("Random() = %+v, want 1:1:1", out.Ref)
	}
	if out.BookName != "Genesis" || out.Text == "" {
		t.Errorf("Random() = %+v", out)
	}
}

func TestRandom_NeverPicksUntitledBook(t *testing.T) {
	last := func(n int) int { return n - 1 }
	env := newTestEnv(t, WithRand(last))

	out, err := env.lib.Random(context.Background())
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if out.Book != "2" {
		t.Errorf("Random().Book = %q, want 2 (book 99 has no title)", out.Book)
	}
}

func TestRandom_NothingLoaded(t *testing.T) {
	env := newTestEnv(t)
	env.server.setDown(true)

	if _, err := env.lib.Random(context.Background()); !errors.Is(err, errors.ErrDataUnavailable) {
		t.Errorf("Random() error = %v, want DATA_UNAVAILABLE", err)
	}
}
