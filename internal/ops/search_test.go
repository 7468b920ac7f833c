package ops

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/hpungsan/lectio/internal/config"
	"github.com/hpungsan/lectio/internal/errors"
)

func TestSearch_MatchesTitledBooksOnly(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.lib.Search(context.Background(), SearchInput{Query: "  EARTH "})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if out.Query != "EARTH" {
		t.Errorf("Query = %q, want trimmed term", out.Query)
	}
	// Book 99 has a match but no title
	if len(out.Items) != 3 {
		t.Fatalf("Items = %+v, want 3", out.Items)
	}
	want := []string{"1:1:1", "1:1:2", "1:2:1"}
	for i, r := range out.Items {
		got := r.Book + ":" + r.Chapter + ":" + strconv.Itoa(r.Verse)
		if got != want[i] {
			t.Errorf("Items[%d] = %s, want %s", i, got, want[i])
		}
		if r.BookName != "Genesis" {
			t.Errorf("Items[%d].BookName = %q", i, r.BookName)
		}
		if !strings.Contains(strings.ToLower(r.Text), "earth") {
			t.Errorf("Items[%d] does not contain the term", i)
		}
	}
	if out.Pagination.Page != 1 || out.Pagination.Total != 3 {
		t.Errorf("Pagination = %+v", out.Pagination)
	}
}

func TestSearch_BlankAndNoResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.lib.Search(ctx, SearchInput{Query: "   "})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !out.Empty || out.NoResults || len(out.Items) != 0 {
		t.Errorf("blank Search() = %+v", out)
	}

	out, err = env.lib.Search(ctx, SearchInput{Query: "leviathan"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !out.NoResults || out.Message != `No results found for "leviathan".` {
		t.Errorf("Search() = %+v, want no-results message", out)
	}
}

func TestSearch_BlankNeedsNoData(t *testing.T) {
	env := newTestEnv(t)
	env.server.setDown(true)

	out, err := env.lib.Search(context.Background(), SearchInput{Query: " "})
	if err != nil {
		t.Fatalf("blank Search() offline error = %v", err)
	}
	if !out.Empty || len(out.Items) != 0 || out.Pagination.Total != 0 {
		t.Errorf("blank Search() = %+v, want empty result", out)
	}
	for _, path := range []string{config.DefaultTitlesPath, config.DefaultHeadingsPath, config.DefaultBodyPath} {
		if n := env.server.count(path); n != 0 {
			t.Errorf("%s fetched %d times, want 0", path, n)
		}
	}
}

func TestSearch_PageClamped(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.lib.Search(context.Background(), SearchInput{Query: "the", Page: 40})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if out.Pagination.Page != 1 || len(out.Items) == 0 {
		t.Errorf("Pagination = %+v, want clamped to 1", out.Pagination)
	}
}

func TestSearch_QueryTooLong(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.lib.Search(context.Background(), SearchInput{Query: strings.Repeat("a", MaxQueryLength+1)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Search() error = %v, want INVALID_REQUEST", err)
	}
}

func TestSearch_RecordsLatestForView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.lib.Search(ctx, SearchInput{Query: "names", View: "cli"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	res, query, ok := env.lib.Tracker().Latest("cli")
	if !ok || query != "names" || len(res.Items) != 1 {
		t.Errorf("Latest(cli) = %+v, %q, %v", res, query, ok)
	}
	if _, _, ok := env.lib.Tracker().Latest(DefaultView); ok {
		t.Error("default view should be untouched")
	}
}
