package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/domain"
)

// Scoreboard contains the judging use cases. It owns the ledger and
// serializes every event against it, so the core behaves as a single actor
// even when transports call in from many goroutines.
type Scoreboard struct {
	catalog *catalog.Catalog
	ledger  *Ledger
	now     func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Snapshot]struct{}
}

// NewScoreboard wraps an already loaded ledger.
func NewScoreboard(cat *catalog.Catalog, ledger *Ledger) *Scoreboard {
	return NewScoreboardWithClock(cat, ledger, time.Now)
}

// NewScoreboardWithClock is for deterministic snapshot timestamps in tests.
func NewScoreboardWithClock(cat *catalog.Catalog, ledger *Ledger, now func() time.Time) *Scoreboard {
	return &Scoreboard{
		catalog:     cat,
		ledger:      ledger,
		now:         now,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// Open runs the one-time legacy purge, reads the persisted ledger and
// returns a ready scoreboard. It never fails on bad persisted state.
func Open(ctx context.Context, cat *catalog.Catalog, store DurableStore, logger *slog.Logger, metrics *Metrics) *Scoreboard {
	PurgeLegacy(ctx, store, logger, metrics)
	return NewScoreboard(cat, LoadLedger(ctx, cat, store, logger, metrics))
}

// Catalog exposes the static roster.
func (s *Scoreboard) Catalog() *catalog.Catalog {
	return s.catalog
}

// Rate sets a rating. Writing the current value again leaves the entry as is.
func (s *Scoreboard) Rate(ctx context.Context, participantID, challengeID string, rating int) (domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.ledger.UpsertRating(ctx, participantID, challengeID, rating)
	if err != nil {
		return domain.ScoreEntry{}, err
	}
	s.broadcastLocked()
	return entry, nil
}

// ToggleRating applies the star-control rule: choosing the rating the entry
// already has clears it back to 0.
func (s *Scoreboard) ToggleRating(ctx context.Context, participantID, challengeID string, rating int) (domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.ledger.Entry(participantID, challengeID); ok && current.Rating == rating {
		rating = domain.MinRating
	}
	entry, err := s.ledger.UpsertRating(ctx, participantID, challengeID, rating)
	if err != nil {
		return domain.ScoreEntry{}, err
	}
	s.broadcastLocked()
	return entry, nil
}

// SetNotes records the judge's notes for a pair.
func (s *Scoreboard) SetNotes(ctx context.Context, participantID, challengeID, notes string) (domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.ledger.UpsertNotes(ctx, participantID, challengeID, notes)
	if err != nil {
		return domain.ScoreEntry{}, err
	}
	s.broadcastLocked()
	return entry, nil
}

// ResetScores irreversibly clears the ledger. Catalogs are untouched.
func (s *Scoreboard) ResetScores(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Clear(ctx); err != nil {
		return err
	}
	s.broadcastLocked()
	return nil
}

// Entry looks up a single pair.
func (s *Scoreboard) Entry(participantID, challengeID string) (domain.ScoreEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entry(participantID, challengeID)
}

// Entries returns every recorded entry in insertion order.
func (s *Scoreboard) Entries() []domain.ScoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

// Progress recomputes group completion from the current ledger.
func (s *Scoreboard) Progress() []domain.GroupProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress(s.catalog, s.ledger.entries)
}

// Leaderboard recomputes the standings from the current ledger.
func (s *Scoreboard) Leaderboard() domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Rank(s.catalog.Participants(), s.ledger.entries)
}

// ScoreMatrix recomputes the full rating grid in leaderboard order.
func (s *Scoreboard) ScoreMatrix() domain.ScoreMatrix {
	s.mu.Lock()
	defer s.mu.Unlock()
	lb := Rank(s.catalog.Participants(), s.ledger.entries)
	return BuildScoreMatrix(s.catalog.Challenges(), lb, s.ledger.entries)
}

// Snapshot returns progress and leaderboard computed together.
func (s *Scoreboard) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every change,
// starting with the current one. The caller must invoke cancel.
func (s *Scoreboard) Subscribe(_ context.Context) (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Scoreboard) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow reader: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Scoreboard) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Progress:    Progress(s.catalog, s.ledger.entries),
		Leaderboard: Rank(s.catalog.Participants(), s.ledger.entries),
		UpdatedAt:   s.now(),
	}
}
