// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/phase"
)

// Tx is the set of writes a vote needs, all inside one transaction
type Tx interface {
	// LockVoter reads the voter's flag for p and holds the voter until the
	// transaction ends. Returns models.ErrUnknownVoter for a missing voter.
	LockVoter(ctx context.Context, voterID string, p models.Phase) (voted bool, err error)
	// InsertVote returns models.ErrAlreadyVoted if (phase, voter) exists
	InsertVote(ctx context.Context, v models.Vote) error
	// IncrementTally adds exactly one to field for every team
	IncrementTally(ctx context.Context, field models.TallyField, teamIDs []string) error
	MarkVoted(ctx context.Context, voterID string, p models.Phase) error
}

// Store is what the ledger reads outside the transaction plus the
// transaction runner itself
type Store interface {
	GetEvent(ctx context.Context) (models.Event, error)
	// GetTeamsByID returns the teams that exist, keyed by id
	GetTeamsByID(ctx context.Context, ids []string) (map[string]models.Team, error)
	// WithTx runs fn in one transaction, committing when fn returns nil.
	// It may run fn again after a serialization failure.
	WithTx(ctx context.Context, fn func(Tx) error) error
}

type Config struct {
	Store        Store
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// Now defaults to time.Now
	Now func() time.Time
}

// Service records votes
type Service struct {
	store   Store
	logger  *slog.Logger
	now     func() time.Time
	metrics ledgerMetrics
}

func NewService(cfg Config) *Service {
	s := &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.metrics.init(cfg.PromRegistry)
	return s
}

// Ballot is one vote request from an authenticated principal
type Ballot struct {
	VoterID string
	Role    models.Role
	// TeamID is the voter's own team, empty if none
	TeamID string
	// Phase is optional; when set it must be the phase that is open
	Phase           models.Phase
	SelectedTeamIDs []string
}

// Receipt describes a committed vote
type Receipt struct {
	VoteID  string
	Phase   models.Phase
	TeamIDs []string
}

// CastVote validates b and commits it exactly once per (voter, phase).
// Every check except the already-voted one happens before the transaction.
func (s *Service) CastVote(ctx context.Context, b Ballot) (Receipt, error) {
	receipt, err := s.castVote(ctx, b)
	if err != nil {
		s.metrics.rejections.WithLabelValues(models.CodeOf(err)).Inc()
		return Receipt{}, err
	}
	s.metrics.votesCast.WithLabelValues(string(receipt.Phase)).Inc()
	return receipt, nil
}

func (s *Service) castVote(ctx context.Context, b Ballot) (Receipt, error) {
	if b.VoterID == "" {
		return Receipt{}, models.ErrUnauthenticated
	}

	// 1. Set semantics, first occurrence keeps its position
	selected := Dedupe(b.SelectedTeamIDs)
	if len(selected) == 0 {
		return Receipt{}, models.ErrEmptySelection
	}

	// 2. Phase and role
	ev, err := s.store.GetEvent(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to load event: %w", err)
	}
	rule, err := phase.Eligibility(ev, b.Role, b.Phase)
	if err != nil {
		return Receipt{}, err
	}

	// 3. Ballot size
	limit := phase.MaxVotes(ev, rule.Phase)
	if len(selected) > limit {
		return Receipt{}, models.ErrTooManyTeams.WithMessage("select at most %d teams (got %d)", limit, len(selected))
	}

	// 4. Judges only vote on teams that advanced
	if rule.Phase1PoolOnly {
		for _, id := range selected {
			if !slices.Contains(ev.Phase1SelectedTeamIDs, id) {
				return Receipt{}, models.ErrNotInPhase1Pool.WithMessage("team %s did not advance to phase 2", id)
			}
		}
	}

	// 5. Own team
	if b.TeamID != "" && slices.Contains(selected, b.TeamID) {
		return Receipt{}, models.ErrSelfVote
	}

	// 6. Existence and visibility
	teams, err := s.store.GetTeamsByID(ctx, selected)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to load teams: %w", err)
	}
	for _, id := range selected {
		t, ok := teams[id]
		if !ok {
			return Receipt{}, models.ErrTeamNotFound.WithMessage("team %s not found", id)
		}
		if t.IsHidden {
			return Receipt{}, models.ErrTeamHidden.WithMessage("team %s is not eligible", id)
		}
	}

	vote := models.Vote{
		ID:        uuid.NewString(),
		VoterID:   b.VoterID,
		Phase:     rule.Phase,
		TeamIDs:   selected,
		Role:      b.Role,
		CreatedAt: s.now().UTC(),
	}

	start := time.Now()
	err = s.store.WithTx(ctx, func(tx Tx) error {
		voted, err := tx.LockVoter(ctx, vote.VoterID, vote.Phase)
		if err != nil {
			return err
		}
		if voted {
			return models.ErrAlreadyVoted
		}
		if err := tx.InsertVote(ctx, vote); err != nil {
			return err
		}
		if err := tx.IncrementTally(ctx, rule.Tally, vote.TeamIDs); err != nil {
			return err
		}
		return tx.MarkVoted(ctx, vote.VoterID, vote.Phase)
	})
	s.metrics.txDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return Receipt{}, err
	}

	s.logger.Info("vote recorded",
		"vote_id", vote.ID,
		"voter_id", vote.VoterID,
		"phase", vote.Phase,
		"teams", len(vote.TeamIDs),
	)

	return Receipt{VoteID: vote.ID, Phase: vote.Phase, TeamIDs: vote.TeamIDs}, nil
}

// Dedupe drops repeated ids and empty strings, keeping first occurrences in order
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
