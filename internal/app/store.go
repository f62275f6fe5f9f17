package app

import "context"

// Keys used in the durable store.
const (
	// ScoresKey holds the ledger as a JSON array of score entries.
	ScoresKey = "scores"

	// Keys written by the earlier build that let judges edit the rosters.
	// They are purged on startup and never written.
	LegacyChallengesKey   = "challenges"
	LegacyParticipantsKey = "ais"
)

// DurableStore abstracts the key-value persistence behind the ledger
// (in-memory, SQLite, Redis, Postgres). Values are JSON documents.
type DurableStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
