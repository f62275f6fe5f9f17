package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"cookoff-scoreboard/internal/app"
	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/domain"
	"cookoff-scoreboard/internal/infra/memory"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newCatalog builds participants ai-a, ai-b, ... and one group per entry in
// levelsPerGroup holding that many challenges.
func newCatalog(t *testing.T, participants int, levelsPerGroup ...int) *catalog.Catalog {
	t.Helper()
	var ps []domain.Participant
	for i := 0; i < participants; i++ {
		id := string(rune('a' + i))
		ps = append(ps, domain.Participant{ID: "ai-" + id, Name: "AI " + id})
	}
	var groups []domain.Group
	var challenges []domain.Challenge
	for g, levels := range levelsPerGroup {
		groups = append(groups, domain.Group{Index: g, Name: "group"})
		for l := 0; l < levels; l++ {
			challenges = append(challenges, domain.Challenge{
				ID:          domain.ChallengeID(g, l),
				GroupIndex:  g,
				LevelIndex:  l,
				DisplayName: domain.ChallengeID(g, l),
			})
		}
	}
	c, err := catalog.New(ps, groups, challenges)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

func newLedger(t *testing.T, cat *catalog.Catalog, store app.DurableStore) *app.Ledger {
	t.Helper()
	return app.LoadLedger(context.Background(), cat, store, discard, nil)
}

// countingStore records writes on top of an in-memory store.
type countingStore struct {
	*memory.Store
	sets int
}

func newCountingStore() *countingStore {
	return &countingStore{Store: memory.NewStore()}
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte) error {
	s.sets++
	return s.Store.Set(ctx, key, value)
}

// failingStore fails the operations that are switched on.
type failingStore struct {
	*memory.Store
	failGet, failSet, failDelete bool
}

var errStoreDown = errors.New("storage unavailable")

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failGet {
		return nil, false, errStoreDown
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errStoreDown
	}
	return s.Store.Set(ctx, key, value)
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if s.failDelete {
		return errStoreDown
	}
	return s.Store.Delete(ctx, key)
}
