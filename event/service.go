// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/phase"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/scoring"
)

// weightTolerance bounds |judgeWeight + participantWeight - 1|
const weightTolerance = 1e-6

// Store is the persistence the event service needs
type Store interface {
	GetEvent(ctx context.Context) (models.Event, error)
	SaveEvent(ctx context.Context, ev models.Event) error
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id string) (models.Team, error)
	SetTeamHidden(ctx context.Context, id string, hidden bool) error
	CountVotes(ctx context.Context) (map[models.Phase]int, error)
	// Reset clears the scope's data and stores ev in one transaction
	Reset(ctx context.Context, scope models.ResetScope, ev models.Event) error
}

type Config struct {
	Store        Store
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// TopN is the Phase-1 cutoff, scoring.DefaultTopN when zero
	TopN int
	// Now defaults to time.Now
	Now func() time.Time
}

// Service owns every mutation of the event: transitions, configuration,
// tie resolution and resets. A single admin operator is assumed.
type Service struct {
	store   Store
	logger  *slog.Logger
	topN    int
	now     func() time.Time
	metrics eventMetrics
}

func NewService(cfg Config) *Service {
	s := &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
		topN:   cfg.TopN,
		now:    cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.topN <= 0 {
		s.topN = scoring.DefaultTopN
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.metrics.init(cfg.PromRegistry)
	return s
}

// Event returns the current event
func (s *Service) Event(ctx context.Context) (models.Event, error) {
	ev, err := s.store.GetEvent(ctx)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to load event: %w", err)
	}
	s.metrics.phase.Set(float64(phase.Ordinal(ev.Status)))
	return ev, nil
}

// UpdateEventStatus moves the event forward to status. Crossing closed_p1
// runs the Phase-1 selection and its result is returned.
func (s *Service) UpdateEventStatus(ctx context.Context, status models.EventStatus) (models.TransitionResponse, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.TransitionResponse{}, err
	}
	return s.transition(ctx, ev, status)
}

func (s *Service) transition(ctx context.Context, ev models.Event, to models.EventStatus) (models.TransitionResponse, error) {
	from := ev.Status
	if err := phase.CanTransition(from, to); err != nil {
		return models.TransitionResponse{}, err
	}

	var resp models.TransitionResponse

	if crosses(from, to, models.StatusClosedP1) {
		sel, err := s.selectPhase1(ctx, &ev)
		if err != nil {
			return models.TransitionResponse{}, err
		}
		resp.Phase1 = &sel
	}

	if crosses(from, to, models.StatusVotingP2) && !phase1Committed(ev) {
		if len(ev.Phase1TiedTeamIDs) > 0 {
			return models.TransitionResponse{}, models.ErrPhase1Pending.WithMessage("resolve the phase 1 cutoff tie before opening phase 2")
		}
		return models.TransitionResponse{}, models.ErrPhase1Pending
	}

	if to == models.StatusRevealedFinal && len(ev.FinalRankingOverrides) == 0 {
		teams, err := s.store.ListTeams(ctx)
		if err != nil {
			return models.TransitionResponse{}, fmt.Errorf("failed to load teams: %w", err)
		}
		final := finalResults(ev, teams)
		if len(final.TieGroups) > 0 {
			return models.TransitionResponse{}, models.ErrFinalTieUnresolved
		}
	}

	if phase.ClearsDeadline(to) {
		ev.VotingDeadline = nil
	}
	ev.Status = to
	ev.UpdatedAt = s.now().UTC()

	if err := s.store.SaveEvent(ctx, ev); err != nil {
		return models.TransitionResponse{}, fmt.Errorf("failed to save event: %w", err)
	}

	s.metrics.transitions.WithLabelValues(string(to)).Inc()
	s.metrics.phase.Set(float64(phase.Ordinal(to)))
	s.logger.Info("event status changed", "from", from, "to", to)

	resp.Event = ev
	return resp, nil
}

// crosses reports whether moving from → to enters or skips over mark
func crosses(from, to, mark models.EventStatus) bool {
	return phase.Before(from, mark) && !phase.Before(to, mark)
}

func phase1Committed(ev models.Event) bool {
	return len(ev.Phase1SelectedTeamIDs) > 0 && len(ev.Phase1TiedTeamIDs) == 0
}

// selectPhase1 runs the cutoff on current tallies and records either the
// selection or the pending tie pool on ev
func (s *Service) selectPhase1(ctx context.Context, ev *models.Event) (models.FinalizePhase1Response, error) {
	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return models.FinalizePhase1Response{}, fmt.Errorf("failed to load teams: %w", err)
	}

	sel := scoring.SelectTopN(teams, s.topN)

	resp := models.FinalizePhase1Response{
		SelectedTeamIDs: sel.SelectedTeamIDs,
		TiedTeams:       sel.TiedTeams,
	}
	if resp.TiedTeams == nil {
		resp.TiedTeams = []models.Team{}
	}

	if sel.NeedsResolution() {
		ev.Phase1SelectedTeamIDs = []string{}
		ev.Phase1TiedTeamIDs = teamIDs(sel.TiedTeams)
		s.logger.Info("phase 1 cutoff tie",
			"auto_selected", len(sel.SelectedTeamIDs),
			"tied", len(sel.TiedTeams),
			"required", sel.RequiredCount,
		)
	} else {
		ev.Phase1SelectedTeamIDs = sel.SelectedTeamIDs
		ev.Phase1TiedTeamIDs = []string{}
		s.logger.Info("phase 1 selection", "selected", len(sel.SelectedTeamIDs))
	}

	return resp, nil
}

// FinalizePhase1 computes the Phase-1 selection once voting has closed
func (s *Service) FinalizePhase1(ctx context.Context) (models.FinalizePhase1Response, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.FinalizePhase1Response{}, err
	}
	if ev.Status != models.StatusClosedP1 && ev.Status != models.StatusRevealedP1 {
		return models.FinalizePhase1Response{}, models.ErrWrongPhase.WithMessage("phase 1 can only be finalized after phase 1 voting closes")
	}
	if phase1Committed(ev) {
		return models.FinalizePhase1Response{}, models.ErrPhase1Finalized
	}

	resp, err := s.selectPhase1(ctx, &ev)
	if err != nil {
		return models.FinalizePhase1Response{}, err
	}
	ev.UpdatedAt = s.now().UTC()
	if err := s.store.SaveEvent(ctx, ev); err != nil {
		return models.FinalizePhase1Response{}, fmt.Errorf("failed to save event: %w", err)
	}
	return resp, nil
}

// ResolvePhase1Ties commits the admin's completed Phase-1 selection: every
// auto-selected team plus enough teams from the tie pool to reach
// min(topN, visible teams)
func (s *Service) ResolvePhase1Ties(ctx context.Context, selectedTeamIDs []string) (models.Event, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.Event{}, err
	}
	if ev.Status != models.StatusClosedP1 && ev.Status != models.StatusRevealedP1 {
		return models.Event{}, models.ErrWrongPhase.WithMessage("phase 1 ties can only be resolved before phase 2 opens")
	}

	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to load teams: %w", err)
	}
	sel := scoring.SelectTopN(teams, s.topN)

	chosen := ledger.Dedupe(selectedTeamIDs)
	if len(chosen) != sel.RequiredCount {
		return models.Event{}, models.ErrInvalidSelection.WithMessage("select exactly %d teams (got %d)", sel.RequiredCount, len(chosen))
	}
	for _, id := range sel.SelectedTeamIDs {
		if !slices.Contains(chosen, id) {
			return models.Event{}, models.ErrInvalidSelection.WithMessage("team %s is above the cutoff and must be selected", id)
		}
	}
	pool := teamIDs(sel.TiedTeams)
	for _, id := range chosen {
		if !slices.Contains(sel.SelectedTeamIDs, id) && !slices.Contains(pool, id) {
			return models.Event{}, models.ErrInvalidSelection.WithMessage("team %s is not in the tie pool", id)
		}
	}

	ev.Phase1SelectedTeamIDs = chosen
	ev.Phase1TiedTeamIDs = []string{}
	ev.UpdatedAt = s.now().UTC()
	if err := s.store.SaveEvent(ctx, ev); err != nil {
		return models.Event{}, fmt.Errorf("failed to save event: %w", err)
	}

	s.logger.Info("phase 1 tie resolved", "selected", len(chosen))
	return ev, nil
}

// ResolveFinalTies stores the admin's podium order: min(PodiumSize, pool)
// distinct teams from the final pool. An empty list clears any stored
// override.
func (s *Service) ResolveFinalTies(ctx context.Context, rankedTeamIDs []string) (models.FinalResults, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.FinalResults{}, err
	}
	if ev.Status != models.StatusClosedP2 && ev.Status != models.StatusRevealedFinal {
		return models.FinalResults{}, models.ErrWrongPhase.WithMessage("final ties can only be resolved after phase 2 voting closes")
	}

	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return models.FinalResults{}, fmt.Errorf("failed to load teams: %w", err)
	}

	ranked := ledger.Dedupe(rankedTeamIDs)
	if len(rankedTeamIDs) > 0 {
		pool := teamIDs(finalPool(ev, teams))
		// A final pool smaller than the podium is ranked in full
		required := min(scoring.PodiumSize, len(pool))
		if len(ranked) != required {
			return models.FinalResults{}, models.ErrInvalidSelection.WithMessage("rank exactly %d distinct teams (got %d)", required, len(ranked))
		}
		for _, id := range ranked {
			if !slices.Contains(pool, id) {
				return models.FinalResults{}, models.ErrInvalidSelection.WithMessage("team %s is not in the final ranking", id)
			}
		}
	}

	ev.FinalRankingOverrides = ranked
	ev.UpdatedAt = s.now().UTC()
	if err := s.store.SaveEvent(ctx, ev); err != nil {
		return models.FinalResults{}, fmt.Errorf("failed to save event: %w", err)
	}

	s.logger.Info("final ranking override stored", "teams", ranked)
	return finalResults(ev, teams), nil
}

// UpdateEventConfig applies the fields present in req. A single weight sets
// the other to its complement.
func (s *Service) UpdateEventConfig(ctx context.Context, req models.UpdateConfigRequest) (models.Event, error) {
	ev, err := s.Event(ctx)
	if err != nil {
		return models.Event{}, err
	}

	if req.JudgeWeight != nil || req.ParticipantWeight != nil {
		jw, pw := ev.JudgeWeight, ev.ParticipantWeight
		switch {
		case req.JudgeWeight != nil && req.ParticipantWeight != nil:
			jw, pw = *req.JudgeWeight, *req.ParticipantWeight
		case req.JudgeWeight != nil:
			jw, pw = *req.JudgeWeight, 1-*req.JudgeWeight
		default:
			jw, pw = 1-*req.ParticipantWeight, *req.ParticipantWeight
		}
		if err := validateWeights(jw, pw); err != nil {
			return models.Event{}, err
		}
		ev.JudgeWeight, ev.ParticipantWeight = jw, pw
	}

	for _, limit := range []struct {
		name  string
		value *int
		dst   **int
	}{
		{"max_votes_per_user", req.MaxVotesPerUser, &ev.MaxVotesPerUser},
		{"max_votes_p1", req.MaxVotesP1, &ev.MaxVotesP1},
		{"max_votes_p2", req.MaxVotesP2, &ev.MaxVotesP2},
	} {
		if limit.value == nil {
			continue
		}
		switch v := *limit.value; {
		case v < 0:
			return models.Event{}, models.ErrInvalidConfig.WithMessage("%s must be positive", limit.name)
		case v == 0:
			*limit.dst = nil
		default:
			*limit.dst = &v
		}
	}

	if req.ClearDeadline {
		ev.VotingDeadline = nil
	} else if req.VotingDeadline != nil {
		d := req.VotingDeadline.UTC()
		ev.VotingDeadline = &d
	}
	if req.AutoClose != nil {
		ev.AutoClose = *req.AutoClose
	}

	ev.UpdatedAt = s.now().UTC()
	if err := s.store.SaveEvent(ctx, ev); err != nil {
		return models.Event{}, fmt.Errorf("failed to save event: %w", err)
	}

	s.logger.Info("event config updated",
		"judge_weight", ev.JudgeWeight,
		"participant_weight", ev.ParticipantWeight,
		"auto_close", ev.AutoClose,
	)
	return ev, nil
}

func validateWeights(jw, pw float64) error {
	if math.IsNaN(jw) || math.IsNaN(pw) || jw < 0 || jw > 1 || pw < 0 || pw > 1 {
		return models.ErrInvalidConfig.WithMessage("weights must be between 0 and 1")
	}
	if math.Abs(jw+pw-1) > weightTolerance {
		return models.ErrInvalidConfig.WithMessage("weights must sum to 1 (got %g)", jw+pw)
	}
	return nil
}

// SetTeamHidden hides a team from voting and scoring, or shows it again
func (s *Service) SetTeamHidden(ctx context.Context, id string, hidden bool) (models.Team, error) {
	if err := s.store.SetTeamHidden(ctx, id, hidden); err != nil {
		return models.Team{}, err
	}
	t, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return models.Team{}, err
	}
	s.logger.Info("team visibility changed", "team_id", id, "hidden", hidden)
	return t, nil
}

func teamIDs(teams []models.Team) []string {
	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}
