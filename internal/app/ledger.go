package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/domain"
)

// Ledger is the writable record of score entries keyed by
// (participant, challenge). It writes the whole ledger through to the
// durable store after every mutation. A Ledger is not safe for concurrent
// use; Scoreboard serializes access to it.
type Ledger struct {
	catalog *catalog.Catalog
	store   DurableStore
	logger  *slog.Logger
	metrics *Metrics

	entries []domain.ScoreEntry
	index   map[domain.EntryKey]int
}

const persistTimeout = 5 * time.Second

// LoadLedger reads the persisted ledger once and returns it hydrated.
// Missing, unreadable or malformed data yields an empty ledger.
func LoadLedger(ctx context.Context, cat *catalog.Catalog, store DurableStore, logger *slog.Logger, metrics *Metrics) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{
		catalog: cat,
		store:   store,
		logger:  logger,
		metrics: metrics,
		index:   make(map[domain.EntryKey]int),
	}
	l.hydrate(ctx)
	return l
}

func (l *Ledger) hydrate(ctx context.Context) {
	raw, found, err := l.store.Get(ctx, ScoresKey)
	if err != nil {
		l.readFailure(err)
		return
	}
	if !found {
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		l.readFailure(fmt.Errorf("decode %s: %w", ScoresKey, err))
		return
	}

	for i, item := range items {
		var entry domain.ScoreEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			l.logger.Warn("dropping undecodable score entry", "position", i, "error", err)
			continue
		}
		if err := l.check(entry); err != nil {
			l.logger.Warn("dropping persisted score entry", "position", i, "key", entry.Key().String(), "error", err)
			continue
		}
		if pos, dup := l.index[entry.Key()]; dup {
			l.logger.Warn("collapsing duplicate score entry", "position", i, "key", entry.Key().String())
			l.entries[pos] = entry
			continue
		}
		l.index[entry.Key()] = len(l.entries)
		l.entries = append(l.entries, entry)
	}
	l.metrics.size(len(l.entries))
	l.logger.Info("ledger loaded", "entries", len(l.entries))
}

func (l *Ledger) readFailure(err error) {
	l.metrics.storageFailure(domain.StorageRead)
	l.logger.Error("ledger read failed, starting empty",
		"error", &domain.StorageError{Op: domain.StorageRead, Key: ScoresKey, Err: err})
}

// UpsertRating sets the rating for a pair, keeping its notes. A new entry
// starts with empty notes.
func (l *Ledger) UpsertRating(ctx context.Context, participantID, challengeID string, rating int) (domain.ScoreEntry, error) {
	if err := l.catalog.CheckKey(participantID, challengeID); err != nil {
		return domain.ScoreEntry{}, err
	}
	if !domain.ValidRating(rating) {
		return domain.ScoreEntry{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, rating)
	}

	key := domain.EntryKey{ParticipantID: participantID, ChallengeID: challengeID}
	entry := l.upsert(key, func(e *domain.ScoreEntry) { e.Rating = rating })
	l.metrics.mutation("rating", len(l.entries))
	l.persist(ctx)
	return entry, nil
}

// UpsertNotes sets the notes for a pair, keeping its rating. A new entry
// starts with a zero rating.
func (l *Ledger) UpsertNotes(ctx context.Context, participantID, challengeID, notes string) (domain.ScoreEntry, error) {
	if err := l.catalog.CheckKey(participantID, challengeID); err != nil {
		return domain.ScoreEntry{}, err
	}

	key := domain.EntryKey{ParticipantID: participantID, ChallengeID: challengeID}
	entry := l.upsert(key, func(e *domain.ScoreEntry) { e.Notes = notes })
	l.metrics.mutation("notes", len(l.entries))
	l.persist(ctx)
	return entry, nil
}

func (l *Ledger) upsert(key domain.EntryKey, apply func(*domain.ScoreEntry)) domain.ScoreEntry {
	if pos, ok := l.index[key]; ok {
		apply(&l.entries[pos])
		return l.entries[pos]
	}
	entry := domain.ScoreEntry{ParticipantID: key.ParticipantID, ChallengeID: key.ChallengeID}
	apply(&entry)
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, entry)
	return entry
}

// Entry returns the entry for a pair, if the pair has been judged.
func (l *Ledger) Entry(participantID, challengeID string) (domain.ScoreEntry, bool) {
	pos, ok := l.index[domain.EntryKey{ParticipantID: participantID, ChallengeID: challengeID}]
	if !ok {
		return domain.ScoreEntry{}, false
	}
	return l.entries[pos], true
}

// Entries returns a copy of the ledger in insertion order.
func (l *Ledger) Entries() []domain.ScoreEntry {
	return append([]domain.ScoreEntry(nil), l.entries...)
}

// Len is the number of judged pairs.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// ReplaceAll overwrites the ledger. Every entry is validated first; on any
// error the ledger is left untouched.
func (l *Ledger) ReplaceAll(ctx context.Context, entries []domain.ScoreEntry) error {
	next := make([]domain.ScoreEntry, 0, len(entries))
	index := make(map[domain.EntryKey]int, len(entries))
	for _, entry := range entries {
		if err := l.check(entry); err != nil {
			return err
		}
		if _, dup := index[entry.Key()]; dup {
			return fmt.Errorf("duplicate score entry %s", entry.Key())
		}
		index[entry.Key()] = len(next)
		next = append(next, entry)
	}

	l.entries, l.index = next, index
	l.metrics.mutation("replace", len(l.entries))
	l.persist(ctx)
	return nil
}

// Clear removes every entry.
func (l *Ledger) Clear(ctx context.Context) error {
	return l.ReplaceAll(ctx, nil)
}

func (l *Ledger) check(entry domain.ScoreEntry) error {
	if err := l.catalog.CheckKey(entry.ParticipantID, entry.ChallengeID); err != nil {
		return err
	}
	if !domain.ValidRating(entry.Rating) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidRating, entry.Rating)
	}
	return nil
}

// persist writes the whole ledger. Failures are logged and counted; the
// in-memory ledger stays authoritative. The write is detached from the
// caller's cancellation so a dropped request cannot discard a mutation that
// already happened in memory.
func (l *Ledger) persist(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	entries := l.entries
	if entries == nil {
		entries = []domain.ScoreEntry{}
	}
	data, err := json.Marshal(entries)
	if err == nil {
		err = l.store.Set(ctx, ScoresKey, data)
	}
	if err != nil {
		l.metrics.storageFailure(domain.StorageWrite)
		var storeErr *domain.StorageError
		if !errors.As(err, &storeErr) {
			err = &domain.StorageError{Op: domain.StorageWrite, Key: ScoresKey, Err: err}
		}
		l.logger.Error("ledger write failed, keeping in-memory state", "error", err, "entries", len(l.entries))
	}
}
