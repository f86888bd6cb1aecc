// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// teamsWithCounts names teams t01, t02, ... in input order
func teamsWithCounts(counts ...int) []models.Team {
	teams := make([]models.Team, len(counts))
	for i, c := range counts {
		teams[i] = team(fmt.Sprintf("t%02d", i+1), 0, c)
	}
	return teams
}

func teamIDs(teams []models.Team) []string {
	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}

func TestSelectTopNBoundaryTie(t *testing.T) {
	// nine clear leaders, then four teams sharing the 10th place count
	teams := teamsWithCounts(100, 90, 80, 70, 60, 50, 40, 30, 20, 10, 10, 10, 10)

	sel := SelectTopN(teams, 10)

	assert.Equal(t, []string{"t01", "t02", "t03", "t04", "t05", "t06", "t07", "t08", "t09"}, sel.SelectedTeamIDs)
	assert.Equal(t, []string{"t10", "t11", "t12", "t13"}, teamIDs(sel.TiedTeams))
	assert.Equal(t, 10, sel.RequiredCount)
	assert.True(t, sel.NeedsResolution())
	require.Len(t, sel.TiedGroups, 1)
	assert.Len(t, sel.TiedGroups[0], 4)
}

func TestSelectTopNNoBoundaryTie(t *testing.T) {
	// ties inside the top ten do not matter when the cutoff is clean
	teams := teamsWithCounts(50, 50, 50, 40, 30, 25, 20, 15, 10, 5, 4, 3)

	sel := SelectTopN(teams, 10)

	assert.Len(t, sel.SelectedTeamIDs, 10)
	assert.NotContains(t, sel.SelectedTeamIDs, "t11")
	assert.NotContains(t, sel.SelectedTeamIDs, "t12")
	assert.Empty(t, sel.TiedTeams)
	assert.False(t, sel.NeedsResolution())
}

func TestSelectTopNEveryoneAdvances(t *testing.T) {
	teams := teamsWithCounts(3, 7, 7, 1)

	sel := SelectTopN(teams, 10)

	assert.Equal(t, []string{"t02", "t03", "t01", "t04"}, sel.SelectedTeamIDs)
	assert.Equal(t, 4, sel.RequiredCount)
	assert.False(t, sel.NeedsResolution())
	require.Len(t, sel.TiedGroups, 1, "internal ties are still reported")
	assert.Equal(t, []string{"t02", "t03"}, teamIDs(sel.TiedGroups[0]))
}

func TestSelectTopNWholeFieldTied(t *testing.T) {
	teams := teamsWithCounts(5, 5, 5)

	sel := SelectTopN(teams, 2)

	assert.Empty(t, sel.SelectedTeamIDs)
	assert.Len(t, sel.TiedTeams, 3)
	assert.Equal(t, 2, sel.RequiredCount)
}

func TestSelectTopNSkipsHiddenTeams(t *testing.T) {
	teams := teamsWithCounts(99, 5, 4, 3)
	teams[0].IsHidden = true

	sel := SelectTopN(teams, 2)

	assert.Equal(t, []string{"t02", "t03"}, sel.SelectedTeamIDs)
	assert.Equal(t, 2, sel.RequiredCount)

	sel = SelectTopN(teams, 10)
	assert.Equal(t, 3, sel.RequiredCount)
	assert.NotContains(t, sel.SelectedTeamIDs, "t01")
}

func TestSelectTopNDefaults(t *testing.T) {
	counts := make([]int, 15)
	for i := range counts {
		counts[i] = 100 - i
	}

	sel := SelectTopN(teamsWithCounts(counts...), 0)

	assert.Len(t, sel.SelectedTeamIDs, DefaultTopN)

	empty := SelectTopN(nil, 10)
	assert.Empty(t, empty.SelectedTeamIDs)
	assert.Zero(t, empty.RequiredCount)
}

func TestSelectTopNIgnoresJudgeVotes(t *testing.T) {
	teams := []models.Team{
		team("a", 100, 1),
		team("b", 0, 5),
		team("c", 0, 3),
	}

	sel := SelectTopN(teams, 2)

	assert.Equal(t, []string{"b", "c"}, sel.SelectedTeamIDs)
}
