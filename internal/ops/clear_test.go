package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/lectio/internal/config"
	"github.com/hpungsan/lectio/internal/loader"
	"github.com/hpungsan/lectio/internal/logging"
)

// gatedLoader holds each LoadBody result until release is closed.
type gatedLoader struct {
	Loader
	started chan struct{}
	release chan struct{}
}

func (g *gatedLoader) LoadBody(ctx context.Context) (*loader.Body, error) {
	body, err := g.Loader.LoadBody(ctx)
	g.started <- struct{}{}
	<-g.release
	return body, err
}

func TestClearCache_WipesStoreAndMemory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.lib.Search(ctx, SearchInput{Query: "earth"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	out, err := env.lib.ClearCache(ctx)
	if err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}
	if !out.Cleared || out.State.Titles != 0 || out.State.Verses != 0 {
		t.Errorf("ClearCache() = %+v, want empty state", out)
	}
	if _, _, ok := env.lib.Tracker().Latest(DefaultView); ok {
		t.Error("search results should be cleared")
	}

	infos, err := env.store.Stat(ctx)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("store entries = %+v, want none", infos)
	}

	// Next load goes back to the network
	out2, err := env.lib.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out2.FromCache || env.server.count(config.DefaultTitlesPath) != 2 {
		t.Errorf("Load() after clear should refetch")
	}
}

func TestClearCache_DiscardsBodyLoadInFlight(t *testing.T) {
	env := newTestEnv(t)
	gl := &gatedLoader{Loader: env.loader, started: make(chan struct{}, 1), release: make(chan struct{})}
	lib := NewLibrary(gl, env.store, env.cfg, env.baseDir, WithLogger(logging.Discard()))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- lib.LoadBody(ctx) }()
	<-gl.started

	if _, err := lib.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}
	close(gl.release)
	if err := <-done; err != nil {
		t.Fatalf("LoadBody() error = %v", err)
	}

	if s := lib.State(); s.Books != 0 || s.Verses != 0 {
		t.Errorf("State() = %+v, want no corpus after ClearCache", s)
	}
	infos, err := env.store.Stat(ctx)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("store entries = %+v, want none", infos)
	}

	// A load issued after the clear is adopted normally
	if err := lib.LoadBody(ctx); err != nil {
		t.Fatalf("LoadBody() error = %v", err)
	}
	if s := lib.State(); s.Verses == 0 {
		t.Errorf("State() = %+v, want corpus loaded", s)
	}
}
