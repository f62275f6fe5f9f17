package app

import (
	"sort"

	"cookoff-scoreboard/internal/domain"
)

// Rank totals every participant's ratings and orders them by score,
// highest first. Ties keep catalog order; there is no secondary key.
func Rank(participants []domain.Participant, entries []domain.ScoreEntry) domain.Leaderboard {
	totals := make(map[string]int, len(participants))
	for _, e := range entries {
		totals[e.ParticipantID] += e.Rating
	}

	standings := make([]domain.Standing, 0, len(participants))
	for _, p := range participants {
		standings = append(standings, domain.Standing{
			Participant: p,
			TotalScore:  totals[p.ID],
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalScore > standings[j].TotalScore
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return domain.Leaderboard{Standings: standings}
}

// BuildScoreMatrix lays out every rating as a grid, rows following the
// leaderboard and columns following the challenge catalog. Unjudged cells are 0.
func BuildScoreMatrix(challenges []domain.Challenge, lb domain.Leaderboard, entries []domain.ScoreEntry) domain.ScoreMatrix {
	ratings := make(map[domain.EntryKey]int, len(entries))
	for _, e := range entries {
		ratings[e.Key()] = e.Rating
	}

	matrix := domain.ScoreMatrix{
		ChallengeIDs: make([]string, len(challenges)),
		Rows:         make([]domain.MatrixRow, 0, len(lb.Standings)),
	}
	for i, ch := range challenges {
		matrix.ChallengeIDs[i] = ch.ID
	}
	for _, s := range lb.Standings {
		row := domain.MatrixRow{Standing: s, Ratings: make([]int, len(challenges))}
		for i, ch := range challenges {
			row.Ratings[i] = ratings[domain.EntryKey{ParticipantID: s.ID, ChallengeID: ch.ID}]
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix
}
