// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/phase"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/scoring"
)

func visibleTeams(teams []models.Team) []models.Team {
	out := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if !t.IsHidden {
			out = append(out, t)
		}
	}
	return out
}

// finalPool is the visible Phase-1 selection, or every visible team when
// nothing was selected
func finalPool(ev models.Event, teams []models.Team) []models.Team {
	visible := visibleTeams(teams)
	if len(ev.Phase1SelectedTeamIDs) == 0 {
		return visible
	}
	pool := make([]models.Team, 0, len(ev.Phase1SelectedTeamIDs))
	for _, t := range visible {
		if slices.Contains(ev.Phase1SelectedTeamIDs, t.ID) {
			pool = append(pool, t)
		}
	}
	return pool
}

// finalResults scores the final pool. Podium ties are reported only while
// no admin override is stored.
func finalResults(ev models.Event, teams []models.Team) models.FinalResults {
	scores := scoring.CalculateScores(finalPool(ev, teams), ev.JudgeWeight, ev.ParticipantWeight)

	if len(ev.FinalRankingOverrides) > 0 {
		return models.FinalResults{
			Scores:           scoring.ApplyRankingOverrides(scores, ev.FinalRankingOverrides),
			OverridesApplied: true,
		}
	}

	report := scoring.DetectFinalTies(scores, scoring.PodiumSize)
	return models.FinalResults{
		Scores:    scores,
		TiedTeams: report.TiedTeams,
		TieGroups: report.TieGroups,
	}
}

// phase1Results lists visible teams by participant votes. While a cutoff
// tie is pending, teams strictly above the tie pool count as selected.
func phase1Results(ev models.Event, teams []models.Team) models.Phase1Results {
	selected := func(t models.Team) bool {
		return slices.Contains(ev.Phase1SelectedTeamIDs, t.ID)
	}
	if cutoff, ok := pendingCutoff(ev, teams); ok {
		selected = func(t models.Team) bool {
			return t.ParticipantVoteCount > cutoff
		}
	}

	visible := visibleTeams(teams)
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].ParticipantVoteCount != visible[j].ParticipantVoteCount {
			return visible[i].ParticipantVoteCount > visible[j].ParticipantVoteCount
		}
		return visible[i].ID < visible[j].ID
	})

	standings := make([]models.Phase1Standing, len(visible))
	for i, t := range visible {
		standings[i] = models.Phase1Standing{
			TeamID:               t.ID,
			Name:                 t.Name,
			ParticipantVoteCount: t.ParticipantVoteCount,
			Selected:             selected(t),
		}
	}

	return models.Phase1Results{
		SelectedTeamIDs: ev.Phase1SelectedTeamIDs,
		TiedTeamIDs:     ev.Phase1TiedTeamIDs,
		Standings:       standings,
	}
}

// pendingCutoff returns the vote count shared by the pending tie pool
func pendingCutoff(ev models.Event, teams []models.Team) (int, bool) {
	if len(ev.Phase1TiedTeamIDs) == 0 {
		return 0, false
	}
	for _, t := range teams {
		if slices.Contains(ev.Phase1TiedTeamIDs, t.ID) {
			return t.ParticipantVoteCount, true
		}
	}
	return 0, false
}

// Results returns what voters may see: nothing before revealed_p1, the
// Phase-1 standings from then on and the final ranking at revealed_final
func (s *Service) Results(ctx context.Context) (models.ResultsResponse, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.ResultsResponse{}, err
	}
	if phase.Before(ev.Status, models.StatusRevealedP1) {
		return models.ResultsResponse{}, models.ErrResultsSealed
	}

	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return models.ResultsResponse{}, fmt.Errorf("failed to load teams: %w", err)
	}

	resp := models.ResultsResponse{Status: ev.Status}
	p1 := phase1Results(ev, teams)
	resp.Phase1 = &p1
	if ev.Status == models.StatusRevealedFinal {
		final := finalResults(ev, teams)
		resp.Final = &final
	}
	return resp, nil
}

// AdminResults returns live standings and tie reports at any status
func (s *Service) AdminResults(ctx context.Context) (models.AdminResultsResponse, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.AdminResultsResponse{}, err
	}
	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return models.AdminResultsResponse{}, fmt.Errorf("failed to load teams: %w", err)
	}
	ballots, err := s.store.CountVotes(ctx)
	if err != nil {
		return models.AdminResultsResponse{}, fmt.Errorf("failed to count votes: %w", err)
	}

	return models.AdminResultsResponse{
		Event:       ev,
		Phase1:      phase1Results(ev, teams),
		Final:       finalResults(ev, teams),
		BallotsCast: ballots,
	}, nil
}

// PublicEvent is the event as voters see it. The Phase-1 selection is
// published from revealed_p1 on.
func (s *Service) PublicEvent(ctx context.Context) (models.PublicEvent, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.PublicEvent{}, err
	}

	pub := models.PublicEvent{
		Status:         ev.Status,
		MaxVotesP1:     phase.MaxVotes(ev, models.PhaseP1),
		MaxVotesP2:     phase.MaxVotes(ev, models.PhaseP2),
		VotingDeadline: ev.VotingDeadline,
	}
	if !phase.Before(ev.Status, models.StatusRevealedP1) {
		pub.Phase1SelectedTeamIDs = ev.Phase1SelectedTeamIDs
	}
	return pub, nil
}

// PublicTeams lists visible teams without their tallies
func (s *Service) PublicTeams(ctx context.Context) ([]models.PublicTeam, error) {
	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	out := []models.PublicTeam{}
	for _, t := range visibleTeams(teams) {
		out = append(out, models.PublicTeam{ID: t.ID, Name: t.Name, Nickname: t.Nickname})
	}
	return out, nil
}
