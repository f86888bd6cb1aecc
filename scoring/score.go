// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"math"
	"sort"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

const (
	// PodiumSize is the number of places decided in the final reveal
	PodiumSize = 3

	// ScoreEpsilon is the largest finalScore difference (on the 0-100 scale)
	// still treated as a tie
	ScoreEpsilon = 1e-6
)

// CalculateScores normalizes each tally against the best team in the input,
// weights the two percentages and ranks the teams. Ranks are dense and
// sequential even for equal scores; ties are reported by DetectFinalTies.
// Callers filter hidden teams beforehand. The input slice is not modified.
func CalculateScores(teams []models.Team, judgeWeight, participantWeight float64) []models.TeamScore {
	if len(teams) == 0 {
		return []models.TeamScore{}
	}

	// Floor of 1 keeps the division defined before any votes exist
	maxJudge, maxParticipant := 1, 1
	for _, t := range teams {
		maxJudge = max(maxJudge, t.JudgeVoteCount)
		maxParticipant = max(maxParticipant, t.ParticipantVoteCount)
	}

	scores := make([]models.TeamScore, len(teams))
	for i, t := range teams {
		judgeNorm := float64(t.JudgeVoteCount) / float64(maxJudge) * 100
		participantNorm := float64(t.ParticipantVoteCount) / float64(maxParticipant) * 100
		scores[i] = models.TeamScore{
			TeamID:                t.ID,
			Name:                  t.Name,
			JudgeVoteCount:        t.JudgeVoteCount,
			ParticipantVoteCount:  t.ParticipantVoteCount,
			JudgeNormalized:       judgeNorm,
			ParticipantNormalized: participantNorm,
			FinalScore:            judgeNorm*judgeWeight + participantNorm*participantWeight,
		}
	}

	// A single team is always the best team in both pools
	if len(scores) == 1 {
		scores[0].JudgeNormalized = 100
		scores[0].ParticipantNormalized = 100
		scores[0].FinalScore = 100
	}

	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		// Stable tie-breaking by team ID (ascending)
		return a.TeamID < b.TeamID
	})

	for i := range scores {
		scores[i].Rank = i + 1
	}

	return scores
}

// TieReport lists the groups of teams whose final scores are equal
type TieReport struct {
	TiedTeams []models.TeamScore   // nil when no qualifying tie exists
	TieGroups [][]models.TeamScore // each group has at least two members
}

// HasTie reports whether any qualifying tie was found
func (r TieReport) HasTie() bool {
	return len(r.TieGroups) > 0
}

// DetectFinalTies groups scores whose finalScore differs from the group's
// leading score by at most ScoreEpsilon. With topN > 0, only groups that
// contain a member ranked topN or better are reported.
func DetectFinalTies(scores []models.TeamScore, topN int) TieReport {
	sorted := make([]models.TeamScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FinalScore != sorted[j].FinalScore {
			return sorted[i].FinalScore > sorted[j].FinalScore
		}
		return sorted[i].Rank < sorted[j].Rank
	})

	var report TieReport
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && math.Abs(sorted[start].FinalScore-sorted[end].FinalScore) <= ScoreEpsilon {
			end++
		}
		group := sorted[start:end]
		start = end

		if len(group) < 2 {
			continue
		}
		if topN > 0 && !anyRankWithin(group, topN) {
			continue
		}

		g := make([]models.TeamScore, len(group))
		copy(g, group)
		report.TieGroups = append(report.TieGroups, g)
		report.TiedTeams = append(report.TiedTeams, g...)
	}

	return report
}

func anyRankWithin(group []models.TeamScore, topN int) bool {
	for _, s := range group {
		if s.Rank <= topN {
			return true
		}
	}
	return false
}
