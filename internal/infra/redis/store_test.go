package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"cookoff-scoreboard/internal/app"
	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewStore(newClient(mr), "", time.Hour)

	if _, found, err := store.Get(ctx, "scores"); err != nil || found {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "scores", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("scoreboard:scores") {
		t.Fatalf("expected namespaced redis key")
	}
	if ttl := mr.TTL("scoreboard:scores"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	got, found, err := store.Get(ctx, "scores")
	if err != nil || !found || string(got) != "[]" {
		t.Fatalf("unexpected get %q found=%v err=%v", got, found, err)
	}

	if err := store.Delete(ctx, "scores"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("scoreboard:scores") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestDurableKeysNeverExpire(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewStore(newClient(mr), "", time.Hour, app.ScoresKey)

	ledger := app.LoadLedger(ctx, catalog.MustDefault(), store, logger, nil)
	if _, err := ledger.UpsertRating(ctx, "ai-chatgpt", "challenge-1-1", 6); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if ttl := mr.TTL("scoreboard:" + app.ScoresKey); ttl != 0 {
		t.Fatalf("expected scores to persist without expiry, got ttl %v", ttl)
	}
	if err := store.Set(ctx, "scratch", []byte(`{}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("scoreboard:scratch"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h on non-durable key, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	reloaded := app.LoadLedger(ctx, catalog.MustDefault(), store, logger, nil)
	if entry, ok := reloaded.Entry("ai-chatgpt", "challenge-1-1"); !ok || entry.Rating != 6 {
		t.Fatalf("expected rating to survive past the ttl, got %+v ok=%v", entry, ok)
	}
}

func TestStoreWrapsConnectionErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	store := NewStore(client, "judge:", 0)
	err = store.Set(context.Background(), "scores", []byte(`[]`))
	var storeErr *domain.StorageError
	if !errors.As(err, &storeErr) || storeErr.Op != domain.StorageWrite {
		t.Fatalf("expected write StorageError, got %v", err)
	}
	_, _, err = store.Get(context.Background(), "scores")
	if !errors.As(err, &storeErr) || storeErr.Op != domain.StorageRead {
		t.Fatalf("expected read StorageError, got %v", err)
	}
}

func TestLedgerRoundTripThroughRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.MustDefault()

	first := app.LoadLedger(ctx, cat, NewStore(newClient(mr), "", 0), logger, nil)
	if _, err := first.UpsertRating(ctx, "ai-gemini", "challenge-2-2", 9); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if _, err := first.UpsertNotes(ctx, "ai-grok", "challenge-0-0", "too salty"); err != nil {
		t.Fatalf("notes: %v", err)
	}

	// fresh client simulates a new process
	second := app.LoadLedger(ctx, cat, NewStore(newClient(mr), "", 0), logger, nil)
	if !reflect.DeepEqual(first.Entries(), second.Entries()) {
		t.Fatalf("round trip mismatch: %+v vs %+v", first.Entries(), second.Entries())
	}
}

func TestCorruptRedisValueYieldsEmptyLedger(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	if err := mr.Set("scoreboard:scores", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ledger := app.LoadLedger(context.Background(), catalog.MustDefault(), NewStore(newClient(mr), "", 0),
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	if ledger.Len() != 0 {
		t.Fatalf("expected empty ledger")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
