// Package catalog holds the fixed competition roster: the participating AIs,
// the challenge groups and the challenges for each difficulty level.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"cookoff-scoreboard/internal/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed competition.yaml
var competitionYAML []byte

// Catalog is the immutable reference dataset read by the core.
type Catalog struct {
	participants []domain.Participant
	groups       []domain.Group
	challenges   []domain.Challenge

	participantIdx map[string]int
	challengeIdx   map[string]int
}

type document struct {
	Participants []domain.Participant `yaml:"participants" validate:"dive"`
	Groups       []domain.Group       `yaml:"groups" validate:"dive"`
	Challenges   []domain.Challenge   `yaml:"challenges" validate:"dive"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(competitionYAML)
}

// MustDefault is Default for package-level wiring and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return New(doc.Participants, doc.Groups, doc.Challenges)
}

// New builds a catalog from already-decoded values. Challenge group and level
// fields are filled from the id when left zero, and the id must agree with them.
func New(participants []domain.Participant, groups []domain.Group, challenges []domain.Challenge) (*Catalog, error) {
	doc := document{
		Participants: append([]domain.Participant(nil), participants...),
		Groups:       append([]domain.Group(nil), groups...),
		Challenges:   append([]domain.Challenge(nil), challenges...),
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	c := &Catalog{
		participants:   doc.Participants,
		groups:         doc.Groups,
		challenges:     doc.Challenges,
		participantIdx: make(map[string]int, len(doc.Participants)),
		challengeIdx:   make(map[string]int, len(doc.Challenges)),
	}

	for i, p := range c.participants {
		if _, dup := c.participantIdx[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate participant %q", domain.ErrInvalidCatalog, p.ID)
		}
		c.participantIdx[p.ID] = i
	}

	groupIdx := make(map[int]string, len(c.groups))
	for _, g := range c.groups {
		if _, dup := groupIdx[g.Index]; dup {
			return nil, fmt.Errorf("%w: duplicate group index %d", domain.ErrInvalidCatalog, g.Index)
		}
		groupIdx[g.Index] = g.Name
	}

	for i := range c.challenges {
		ch := &c.challenges[i]
		g, l, err := domain.ParseChallengeID(ch.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
		}
		// A zero pair means the indices were left out of the YAML and are taken
		// from the id; an explicit 0/0 lands here too and is checked below.
		if ch.GroupIndex == 0 && ch.LevelIndex == 0 {
			ch.GroupIndex, ch.LevelIndex = g, l
		}
		if ch.GroupIndex != g || ch.LevelIndex != l {
			return nil, fmt.Errorf("%w: challenge %q declares group %d level %d", domain.ErrInvalidCatalog, ch.ID, ch.GroupIndex, ch.LevelIndex)
		}
		if l >= domain.LevelCount {
			return nil, fmt.Errorf("%w: challenge %q level out of range", domain.ErrInvalidCatalog, ch.ID)
		}
		name, ok := groupIdx[g]
		if !ok {
			return nil, fmt.Errorf("%w: challenge %q references unknown group %d", domain.ErrInvalidCatalog, ch.ID, g)
		}
		if ch.GroupName == "" {
			ch.GroupName = name
		}
		if _, dup := c.challengeIdx[ch.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate challenge %q", domain.ErrInvalidCatalog, ch.ID)
		}
		c.challengeIdx[ch.ID] = i
	}
	return c, nil
}

// Participants returns the participants in catalog order.
func (c *Catalog) Participants() []domain.Participant {
	return append([]domain.Participant(nil), c.participants...)
}

// Groups returns the challenge groups in catalog order.
func (c *Catalog) Groups() []domain.Group {
	return append([]domain.Group(nil), c.groups...)
}

// Challenges returns every challenge in catalog order.
func (c *Catalog) Challenges() []domain.Challenge {
	return append([]domain.Challenge(nil), c.challenges...)
}

// ParticipantCount is the number of contestants.
func (c *Catalog) ParticipantCount() int {
	return len(c.participants)
}

// HasParticipant reports whether id names a catalog participant.
func (c *Catalog) HasParticipant(id string) bool {
	_, ok := c.participantIdx[id]
	return ok
}

// HasChallenge reports whether id names a catalog challenge.
func (c *Catalog) HasChallenge(id string) bool {
	_, ok := c.challengeIdx[id]
	return ok
}

// Challenge looks up the challenge for a group/level selection.
func (c *Catalog) Challenge(groupIndex, levelIndex int) (domain.Challenge, error) {
	i, ok := c.challengeIdx[domain.ChallengeID(groupIndex, levelIndex)]
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return c.challenges[i], nil
}

// ChallengesInGroup counts the challenges defined for a group.
func (c *Catalog) ChallengesInGroup(groupIndex int) int {
	n := 0
	for _, ch := range c.challenges {
		if ch.GroupIndex == groupIndex {
			n++
		}
	}
	return n
}

// CheckKey validates a ledger key against the catalog.
func (c *Catalog) CheckKey(participantID, challengeID string) error {
	key := domain.EntryKey{ParticipantID: participantID, ChallengeID: challengeID}
	if !c.HasParticipant(participantID) {
		return &domain.KeyError{Key: key, Err: domain.ErrUnknownParticipant}
	}
	if !c.HasChallenge(challengeID) {
		return &domain.KeyError{Key: key, Err: domain.ErrUnknownChallenge}
	}
	return nil
}
