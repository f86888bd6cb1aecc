// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"sort"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// ApplyRankingOverrides reorders the teams named in rankedTeamIDs among the
// rank slots they already occupy: their original ranks are sorted and handed
// out in the admin's order. Every other team keeps its rank. Unknown IDs are
// ignored. An empty override returns an unchanged copy.
func ApplyRankingOverrides(scores []models.TeamScore, rankedTeamIDs []string) []models.TeamScore {
	out := make([]models.TeamScore, len(scores))
	copy(out, scores)
	if len(rankedTeamIDs) == 0 {
		return out
	}

	index := make(map[string]int, len(out))
	for i, s := range out {
		index[s.TeamID] = i
	}

	var positions []int
	var slots []int
	seen := make(map[string]bool, len(rankedTeamIDs))
	for _, id := range rankedTeamIDs {
		i, ok := index[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		positions = append(positions, i)
		slots = append(slots, out[i].Rank)
	}
	sort.Ints(slots)

	for k, i := range positions {
		out[i].Rank = slots[k]
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})

	return out
}
