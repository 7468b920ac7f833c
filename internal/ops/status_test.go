package ops

import (
	"context"
	"testing"
)

func TestStatus_EmptyCache(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.lib.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if out.Fresh || out.CachedAt != nil || out.Age != "" {
		t.Errorf("Status() = %+v, want no cache", out)
	}
	if len(out.Entries) != 0 {
		t.Errorf("Entries = %+v, want none", out.Entries)
	}
	if out.Window != "24h0m0s" {
		t.Errorf("Window = %q", out.Window)
	}
}

func TestStatus_AfterLoad(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.lib.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := env.lib.LoadBody(ctx); err != nil {
		t.Fatalf("LoadBody() error = %v", err)
	}

	out, err := env.lib.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !out.Fresh || out.CachedAt == nil {
		t.Errorf("Status() = %+v, want fresh cache", out)
	}
	if out.Age == "" {
		t.Error("Age should be humanized")
	}

	keys := map[string]bool{}
	for _, e := range out.Entries {
		keys[e.Key] = true
		if e.Size == "" || e.UpdatedAt == "" {
			t.Errorf("entry %+v missing size or time", e)
		}
	}
	for _, k := range []string{"body", "headings", "timestamp", "titles"} {
		if !keys[k] {
			t.Errorf("Entries missing %q: %+v", k, out.Entries)
		}
	}
	if out.State.Titles != 2 || out.State.Verses != 5 {
		t.Errorf("State = %+v", out.State)
	}
}
