package memory

import (
	"context"
	"testing"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, found, err := store.Get(ctx, "scores"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "scores", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found, err := store.Get(ctx, "scores")
	if err != nil || !found || string(got) != "[]" {
		t.Fatalf("unexpected get: %q found=%v err=%v", got, found, err)
	}

	// returned slices must not alias stored bytes
	got[0] = 'x'
	again, _, _ := store.Get(ctx, "scores")
	if string(again) != "[]" {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}

	if err := store.Delete(ctx, "scores"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Has("scores") {
		t.Fatalf("expected key removed")
	}
	if err := store.Delete(ctx, "scores"); err != nil {
		t.Fatalf("delete of missing key should be a no-op: %v", err)
	}
}

func TestNewStoreWithSeeds(t *testing.T) {
	store := NewStoreWith(map[string]string{"ais": `[{"id":"x"}]`})
	if !store.Has("ais") {
		t.Fatalf("expected seeded key")
	}
}
