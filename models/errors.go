// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an error for the caller: whether to fix the request,
// wait for a state change, stop retrying, or retry.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified, user-facing error. Two Errors match under errors.Is
// when their codes are equal, so a sentinel still matches a copy carrying a
// more specific message.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e with a formatted message naming the offending input
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a copy of e that carries err as its cause
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Common errors
var (
	ErrUnauthenticated = newError(KindUnauthenticated, "unauthenticated", "authentication required")
	ErrUnknownVoter    = newError(KindUnauthenticated, "unknown_voter", "voter is not registered")
	ErrForbidden       = newError(KindForbidden, "forbidden", "not allowed for this role")

	// Vote eligibility
	ErrPhaseMismatch = newError(KindForbidden, "phase_mismatch", "voting is not open")
	ErrRoleMismatch  = newError(KindForbidden, "role_mismatch", "your role cannot vote in this phase")

	// Vote validation
	ErrEmptySelection  = newError(KindValidation, "empty_selection", "select at least one team")
	ErrTooManyTeams    = newError(KindValidation, "too_many_teams", "too many teams selected")
	ErrSelfVote        = newError(KindValidation, "self_vote", "you cannot vote for your own team")
	ErrTeamNotFound    = newError(KindValidation, "team_not_found", "team not found")
	ErrTeamHidden      = newError(KindValidation, "team_hidden", "team is not eligible")
	ErrInvalidPhase    = newError(KindValidation, "invalid_phase", "unknown voting phase")
	ErrNotInPhase1Pool = newError(KindValidation, "not_in_phase1_pool", "team did not advance to phase 2")

	// Vote conflict, the only expected concurrency outcome
	ErrAlreadyVoted = newError(KindConflict, "already_voted", "already voted in this phase")

	// Admin operations
	ErrInvalidStatus      = newError(KindValidation, "invalid_status", "unknown event status")
	ErrInvalidTransition  = newError(KindConflict, "invalid_transition", "event status can only move forward")
	ErrInvalidConfig      = newError(KindValidation, "invalid_config", "invalid event configuration")
	ErrPhase1Pending      = newError(KindConflict, "phase1_pending", "phase 1 selection is not finalized")
	ErrPhase1Finalized    = newError(KindConflict, "phase1_finalized", "phase 1 selection is already finalized")
	ErrInvalidSelection   = newError(KindValidation, "invalid_selection", "invalid team selection")
	ErrFinalTieUnresolved = newError(KindConflict, "final_tie_unresolved", "podium tie must be resolved first")
	ErrWrongPhase         = newError(KindConflict, "wrong_phase", "operation not allowed in the current event status")
	ErrResultsSealed      = newError(KindForbidden, "results_sealed", "results are not revealed yet")
	ErrNotFound           = newError(KindNotFound, "not_found", "not found")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain, or "internal"
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}
