package app

import (
	"math"

	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/domain"
)

// Progress derives per-group completion from the catalog and the ledger.
// Any entry counts as judged, whatever its rating.
func Progress(cat *catalog.Catalog, entries []domain.ScoreEntry) []domain.GroupProgress {
	perChallenge := make(map[string]int, len(entries))
	for _, e := range entries {
		perChallenge[e.ChallengeID]++
	}

	participants := cat.ParticipantCount()
	groups := cat.Groups()
	out := make([]domain.GroupProgress, 0, len(groups))
	for _, g := range groups {
		gp := domain.GroupProgress{
			GroupIndex:  g.Index,
			GroupName:   g.Name,
			LevelStatus: make([]domain.LevelStatus, domain.LevelCount),
		}
		for level := 0; level < domain.LevelCount; level++ {
			n := perChallenge[domain.ChallengeID(g.Index, level)]
			gp.Judged += n
			gp.LevelStatus[level] = levelStatus(n, participants)
		}
		gp.Possible = participants * cat.ChallengesInGroup(g.Index)
		gp.Percentage = percentage(gp.Judged, gp.Possible)
		out = append(out, gp)
	}
	return out
}

func levelStatus(judged, participants int) domain.LevelStatus {
	switch {
	case judged == 0:
		return domain.StatusNotStarted
	case judged < participants:
		return domain.StatusInProgress
	default:
		return domain.StatusCompleted
	}
}

func percentage(judged, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(judged) / float64(possible)))
}
