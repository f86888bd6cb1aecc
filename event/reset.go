// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"
	"fmt"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/phase"
)

// ResetVotes deletes every vote, zeroes both tallies and returns the event
// to waiting. Weights, limits and auto-close survive.
func (s *Service) ResetVotes(ctx context.Context) (models.Event, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.Event{}, err
	}

	ev.Status = models.StatusWaiting
	ev.VotingDeadline = nil
	ev.Phase1SelectedTeamIDs = []string{}
	ev.Phase1TiedTeamIDs = []string{}
	ev.FinalRankingOverrides = []string{}

	return s.reset(ctx, models.ResetAllVotes, ev)
}

// ResetPhase2Votes deletes judge votes only. An event already past
// revealed_p1 goes back to it so judging can be rerun.
func (s *Service) ResetPhase2Votes(ctx context.Context) (models.Event, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.Event{}, err
	}

	if phase.Before(models.StatusRevealedP1, ev.Status) {
		ev.Status = models.StatusRevealedP1
		ev.VotingDeadline = nil
	}
	ev.FinalRankingOverrides = []string{}

	return s.reset(ctx, models.ResetPhase2Votes, ev)
}

// ResetAll removes votes, teams and non-admin users and restores the
// default event
func (s *Service) ResetAll(ctx context.Context) (models.Event, error) {
	return s.reset(ctx, models.ResetEverything, models.DefaultEvent())
}

func (s *Service) reset(ctx context.Context, scope models.ResetScope, ev models.Event) (models.Event, error) {
	ev.UpdatedAt = s.now().UTC()
	if err := s.store.Reset(ctx, scope, ev); err != nil {
		return models.Event{}, fmt.Errorf("failed to reset %s: %w", scope, err)
	}

	s.metrics.phase.Set(float64(phase.Ordinal(ev.Status)))
	s.logger.Warn("event reset", "scope", scope, "status", ev.Status)
	return ev, nil
}
