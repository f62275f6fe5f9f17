package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownParticipant is returned when a mutation names a participant outside the catalog.
	ErrUnknownParticipant = errors.New("participant not in catalog")
	// ErrUnknownChallenge is returned when a mutation names a challenge outside the catalog.
	ErrUnknownChallenge = errors.New("challenge not in catalog")
	// ErrInvalidRating indicates a rating outside [MinRating, MaxRating].
	ErrInvalidRating = errors.New("rating out of range")
	// ErrInvalidChallengeID indicates an id that does not follow "challenge-{group}-{level}".
	ErrInvalidChallengeID = errors.New("malformed challenge id")
	// ErrChallengeNotFound is returned when no challenge exists for a group/level selection.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrInvalidCatalog indicates the static catalog failed validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// KeyError reports a ledger mutation that referenced an id outside the catalog.
type KeyError struct {
	Key EntryKey
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid score key %s: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// StorageOp names the durable store operation that failed.
type StorageOp string

const (
	StorageRead   StorageOp = "read"
	StorageWrite  StorageOp = "write"
	StorageDelete StorageOp = "delete"
)

// StorageError wraps a durable store failure with the key and operation involved.
type StorageError struct {
	Op  StorageOp
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
