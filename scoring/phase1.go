// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"sort"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// DefaultTopN is the number of teams that advance past participant voting
const DefaultTopN = 10

// Phase1Selection is the outcome of the participant-voting cutoff
type Phase1Selection struct {
	// SelectedTeamIDs advance without admin input
	SelectedTeamIDs []string
	// TiedTeams share the cutoff vote count and straddle the boundary;
	// the admin picks RequiredCount-len(SelectedTeamIDs) of them
	TiedTeams []models.Team
	// TiedGroups lists every group of equal counts that matters for the
	// selection (informational when everyone advances)
	TiedGroups [][]models.Team
	// RequiredCount is min(topN, visible teams)
	RequiredCount int
}

// NeedsResolution reports whether the admin must complete the selection
func (s Phase1Selection) NeedsResolution() bool {
	return len(s.TiedTeams) > 0
}

// SelectTopN picks the teams that advance to judge voting, ranking visible
// teams by participant votes only. A tie across the cutoff is never broken
// automatically.
func SelectTopN(teams []models.Team, topN int) Phase1Selection {
	if topN <= 0 {
		topN = DefaultTopN
	}

	sorted := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if !t.IsHidden {
			sorted = append(sorted, t)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ParticipantVoteCount != sorted[j].ParticipantVoteCount {
			return sorted[i].ParticipantVoteCount > sorted[j].ParticipantVoteCount
		}
		return sorted[i].ID < sorted[j].ID
	})

	sel := Phase1Selection{
		SelectedTeamIDs: []string{},
		RequiredCount:   min(topN, len(sorted)),
	}

	// Everyone advances; ties are only reported
	if len(sorted) <= topN {
		for _, t := range sorted {
			sel.SelectedTeamIDs = append(sel.SelectedTeamIDs, t.ID)
		}
		sel.TiedGroups = equalCountGroups(sorted)
		return sel
	}

	cutoff := sorted[topN-1].ParticipantVoteCount
	if sorted[topN].ParticipantVoteCount != cutoff {
		for _, t := range sorted[:topN] {
			sel.SelectedTeamIDs = append(sel.SelectedTeamIDs, t.ID)
		}
		return sel
	}

	// Boundary tie: strictly-above teams advance, the cutoff group is pending
	for _, t := range sorted {
		switch {
		case t.ParticipantVoteCount > cutoff:
			sel.SelectedTeamIDs = append(sel.SelectedTeamIDs, t.ID)
		case t.ParticipantVoteCount == cutoff:
			sel.TiedTeams = append(sel.TiedTeams, t)
		}
	}
	sel.TiedGroups = [][]models.Team{sel.TiedTeams}

	return sel
}

// equalCountGroups returns runs of two or more teams with the same count
// from a slice already sorted by count
func equalCountGroups(sorted []models.Team) [][]models.Team {
	var groups [][]models.Team
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].ParticipantVoteCount == sorted[start].ParticipantVoteCount {
			end++
		}
		if end-start > 1 {
			g := make([]models.Team, end-start)
			copy(g, sorted[start:end])
			groups = append(groups, g)
		}
		start = end
	}
	return groups
}
