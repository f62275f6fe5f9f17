package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MinRating and MaxRating bound a judge's rating for a single challenge.
	MinRating = 0
	MaxRating = 10

	// LevelCount is the number of difficulty levels every group declares.
	LevelCount = 3

	// ParticipantIDPrefix is the naming convention for contestant ids.
	ParticipantIDPrefix = "ai-"

	challengeIDPrefix = "challenge-"
)

// Level indexes within a challenge group.
const (
	LevelEasy = iota
	LevelMedium
	LevelHard
)

// Participant is an AI contestant from the static catalog.
type Participant struct {
	ID        string `json:"id" yaml:"id" validate:"required,startswith=ai-"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	AvatarRef string `json:"avatarRef" yaml:"avatarRef"`
}

// Criterion is one line of a challenge's scoring guide.
type Criterion struct {
	Criterion string `json:"criterion" yaml:"criterion" validate:"required"`
	Points    int    `json:"points" yaml:"points" validate:"gte=0"`
}

// Group is a themed set of challenges, one per difficulty level.
type Group struct {
	Index int    `json:"index" yaml:"index" validate:"gte=0"`
	Name  string `json:"name" yaml:"name" validate:"required"`
}

// Challenge is a single (group, level) task in the competition.
type Challenge struct {
	ID              string      `json:"id" yaml:"id" validate:"required"`
	GroupIndex      int         `json:"groupIndex" yaml:"groupIndex" validate:"gte=0"`
	LevelIndex      int         `json:"levelIndex" yaml:"levelIndex" validate:"gte=0,lt=3"`
	GroupName       string      `json:"groupName" yaml:"groupName"`
	Level           string      `json:"level" yaml:"level"`
	DisplayName     string      `json:"displayName" yaml:"displayName" validate:"required"`
	Objective       string      `json:"objective" yaml:"objective"`
	Description     string      `json:"description" yaml:"description"`
	Prompt          string      `json:"prompt" yaml:"prompt"`
	Expectation     string      `json:"expectation" yaml:"expectation"`
	ScoringCriteria []Criterion `json:"scoringCriteria" yaml:"scoringCriteria" validate:"dive"`
}

// ScoreEntry is a judge's record for one (participant, challenge) pair.
// Its presence means the pair has been judged, even with a zero rating.
// JSON names match the persisted "scores" layout.
type ScoreEntry struct {
	ParticipantID string `json:"aiId"`
	ChallengeID   string `json:"challengeId"`
	Rating        int    `json:"score"`
	Notes         string `json:"notes"`
}

// Key returns the composite key of the entry.
func (e ScoreEntry) Key() EntryKey {
	return EntryKey{ParticipantID: e.ParticipantID, ChallengeID: e.ChallengeID}
}

// EntryKey identifies a ledger entry.
type EntryKey struct {
	ParticipantID string
	ChallengeID   string
}

func (k EntryKey) String() string {
	return k.ParticipantID + "/" + k.ChallengeID
}

// ValidRating reports whether r is inside [MinRating, MaxRating].
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// ChallengeID builds the canonical id for a group/level pair.
func ChallengeID(groupIndex, levelIndex int) string {
	return fmt.Sprintf("%s%d-%d", challengeIDPrefix, groupIndex, levelIndex)
}

// ParseChallengeID splits a canonical challenge id into its group and level.
func ParseChallengeID(id string) (groupIndex, levelIndex int, err error) {
	rest, ok := strings.CutPrefix(id, challengeIDPrefix)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidChallengeID, id)
	}
	g, l, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidChallengeID, id)
	}
	groupIndex, gErr := strconv.Atoi(g)
	levelIndex, lErr := strconv.Atoi(l)
	if gErr != nil || lErr != nil || groupIndex < 0 || levelIndex < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidChallengeID, id)
	}
	// "challenge-01-0" parses but would never match ChallengeID(1, 0)
	if ChallengeID(groupIndex, levelIndex) != id {
		return 0, 0, fmt.Errorf("%w: %q is not canonical", ErrInvalidChallengeID, id)
	}
	return groupIndex, levelIndex, nil
}

// LevelStatus is the judging state of one level across all participants.
type LevelStatus string

const (
	StatusNotStarted LevelStatus = "not-started"
	StatusInProgress LevelStatus = "in-progress"
	StatusCompleted  LevelStatus = "completed"
)

// GroupProgress summarises how much of a group has been judged.
type GroupProgress struct {
	GroupIndex  int           `json:"groupIndex"`
	GroupName   string        `json:"groupName"`
	Percentage  int           `json:"percentage"`
	LevelStatus []LevelStatus `json:"levelStatus"`
	Judged      int           `json:"judged"`
	Possible    int           `json:"possible"`
}

// Standing is a participant annotated with its total score and rank.
type Standing struct {
	Participant
	Rank       int `json:"rank"`
	TotalScore int `json:"totalScore"`
}

// PodiumSize is the number of standings shown on the podium.
const PodiumSize = 3

// Leaderboard captures the ordered standings.
type Leaderboard struct {
	Standings []Standing `json:"standings"`
}

// Podium returns the first three standings (index 0 is first place).
func (lb Leaderboard) Podium() []Standing {
	if len(lb.Standings) <= PodiumSize {
		return lb.Standings
	}
	return lb.Standings[:PodiumSize]
}

// Others returns the standings below the podium, ranked from 4 onwards.
func (lb Leaderboard) Others() []Standing {
	if len(lb.Standings) <= PodiumSize {
		return []Standing{}
	}
	return lb.Standings[PodiumSize:]
}

// MatrixRow is one participant's ratings across every challenge.
type MatrixRow struct {
	Standing
	Ratings []int `json:"ratings"`
}

// ScoreMatrix is the full scoreboard grid: rows in rank order, columns in
// catalog challenge order.
type ScoreMatrix struct {
	ChallengeIDs []string    `json:"challengeIds"`
	Rows         []MatrixRow `json:"rows"`
}

// Snapshot bundles the derived views pushed to subscribers after a change.
type Snapshot struct {
	Progress    []GroupProgress `json:"progress"`
	Leaderboard Leaderboard     `json:"leaderboard"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
