// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import (
	"time"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// order is the only legal direction of travel for the event status
var order = []models.EventStatus{
	models.StatusWaiting,
	models.StatusVotingP1,
	models.StatusClosedP1,
	models.StatusRevealedP1,
	models.StatusVotingP2,
	models.StatusClosedP2,
	models.StatusRevealedFinal,
}

// Statuses returns the event statuses in lifecycle order
func Statuses() []models.EventStatus {
	out := make([]models.EventStatus, len(order))
	copy(out, order)
	return out
}

// Ordinal returns the zero-based position of s in the lifecycle, or -1
func Ordinal(s models.EventStatus) int {
	for i, o := range order {
		if o == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known event status
func Valid(s models.EventStatus) bool {
	return Ordinal(s) >= 0
}

// Before reports whether a comes earlier in the lifecycle than b
func Before(a, b models.EventStatus) bool {
	return Ordinal(a) < Ordinal(b)
}

// CanTransition validates a status change. Any later status is accepted;
// the same or an earlier one is rejected. Only a reset moves backward.
func CanTransition(from, to models.EventStatus) error {
	if !Valid(to) {
		return models.ErrInvalidStatus.WithMessage("unknown event status %q", to)
	}
	if Ordinal(to) <= Ordinal(from) {
		return models.ErrInvalidTransition.WithMessage("cannot move event from %s to %s", from, to)
	}
	return nil
}

// Rule describes who may vote during a voting status and what the vote touches
type Rule struct {
	Phase  models.Phase
	Status models.EventStatus
	Role   models.Role
	Tally  models.TallyField
	// Phase1PoolOnly restricts targets to the committed Phase-1 selection
	Phase1PoolOnly bool
}

var rules = []Rule{
	{
		Phase:  models.PhaseP1,
		Status: models.StatusVotingP1,
		Role:   models.RoleParticipant,
		Tally:  models.TallyParticipant,
	},
	{
		Phase:          models.PhaseP2,
		Status:         models.StatusVotingP2,
		Role:           models.RoleJudge,
		Tally:          models.TallyJudge,
		Phase1PoolOnly: true,
	},
}

// RuleFor returns the rule of a voting phase
func RuleFor(p models.Phase) (Rule, bool) {
	for _, r := range rules {
		if r.Phase == p {
			return r, true
		}
	}
	return Rule{}, false
}

// Active returns the rule of the phase open in status s, if any
func Active(s models.EventStatus) (Rule, bool) {
	for _, r := range rules {
		if r.Status == s {
			return r, true
		}
	}
	return Rule{}, false
}

// Eligibility returns the rule a voter with role falls under right now.
// requested may be empty, meaning "whatever phase is open".
func Eligibility(ev models.Event, role models.Role, requested models.Phase) (Rule, error) {
	if requested != "" {
		if _, ok := RuleFor(requested); !ok {
			return Rule{}, models.ErrInvalidPhase.WithMessage("unknown phase %q", requested)
		}
	}
	rule, open := Active(ev.Status)
	if !open {
		return Rule{}, models.ErrPhaseMismatch.WithMessage("voting is not open (status %s)", ev.Status)
	}
	if requested != "" && requested != rule.Phase {
		return Rule{}, models.ErrPhaseMismatch.WithMessage("phase %s is not open", requested)
	}
	if role != rule.Role {
		return Rule{}, models.ErrRoleMismatch.WithMessage("only %ss vote in phase %s", rule.Role, rule.Phase)
	}
	return rule, nil
}

// MaxVotes resolves the ballot size limit for p: the phase-specific limit,
// else the legacy per-user limit, else DefaultMaxVotes.
func MaxVotes(ev models.Event, p models.Phase) int {
	var specific *int
	switch p {
	case models.PhaseP1:
		specific = ev.MaxVotesP1
	case models.PhaseP2:
		specific = ev.MaxVotesP2
	}

	switch {
	case specific != nil && *specific > 0:
		return *specific
	case ev.MaxVotesPerUser != nil && *ev.MaxVotesPerUser > 0:
		return *ev.MaxVotesPerUser
	default:
		return models.DefaultMaxVotes
	}
}

// NextOnExpiry returns the status a timer expiry moves s to
func NextOnExpiry(s models.EventStatus) (models.EventStatus, bool) {
	switch s {
	case models.StatusWaiting:
		return models.StatusVotingP1, true
	case models.StatusVotingP1:
		return models.StatusClosedP1, true
	case models.StatusVotingP2:
		return models.StatusClosedP2, true
	}
	return "", false
}

// DueForAdvance reports the status the event should auto-advance to at now
func DueForAdvance(ev models.Event, now time.Time) (models.EventStatus, bool) {
	if !ev.AutoClose || ev.VotingDeadline == nil || now.Before(*ev.VotingDeadline) {
		return "", false
	}
	return NextOnExpiry(ev.Status)
}

// ClearsDeadline reports whether entering s resets the voting timer
func ClearsDeadline(s models.EventStatus) bool {
	switch s {
	case models.StatusVotingP1, models.StatusClosedP1, models.StatusClosedP2:
		return true
	}
	return false
}
