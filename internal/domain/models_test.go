package domain

import (
	"errors"
	"testing"
)

func TestChallengeIDRoundTrip(t *testing.T) {
	id := ChallengeID(4, LevelMedium)
	if id != "challenge-4-1" {
		t.Fatalf("unexpected id %q", id)
	}
	g, l, err := ParseChallengeID(id)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g != 4 || l != LevelMedium {
		t.Fatalf("expected 4/1, got %d/%d", g, l)
	}
}

func TestParseChallengeIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "challenge-", "challenge-1", "challenge-a-1", "quest-1-1", "challenge--1-0", "challenge-01-0", "challenge-+1-0", "challenge-1-00"} {
		if _, _, err := ParseChallengeID(id); !errors.Is(err, ErrInvalidChallengeID) {
			t.Fatalf("expected ErrInvalidChallengeID for %q, got %v", id, err)
		}
	}
}

func TestValidRating(t *testing.T) {
	for r, want := range map[int]bool{-1: false, 0: true, 5: true, 10: true, 11: false} {
		if got := ValidRating(r); got != want {
			t.Fatalf("ValidRating(%d) = %v", r, got)
		}
	}
}

func TestPodiumAndOthers(t *testing.T) {
	lb := Leaderboard{}
	if len(lb.Podium()) != 0 || len(lb.Others()) != 0 {
		t.Fatalf("expected empty podium and others")
	}

	for i := 1; i <= 5; i++ {
		lb.Standings = append(lb.Standings, Standing{Rank: i})
	}
	podium, others := lb.Podium(), lb.Others()
	if len(podium) != 3 || podium[0].Rank != 1 {
		t.Fatalf("unexpected podium %+v", podium)
	}
	if len(others) != 2 || others[0].Rank != 4 {
		t.Fatalf("unexpected others %+v", others)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	keyErr := &KeyError{Key: EntryKey{ParticipantID: "ai-x", ChallengeID: "challenge-0-0"}, Err: ErrUnknownParticipant}
	if !errors.Is(keyErr, ErrUnknownParticipant) {
		t.Fatalf("expected KeyError to unwrap")
	}
	cause := errors.New("quota exceeded")
	storeErr := &StorageError{Op: StorageWrite, Key: "scores", Err: cause}
	if !errors.Is(storeErr, cause) {
		t.Fatalf("expected StorageError to unwrap")
	}
}
