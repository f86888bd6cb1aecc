// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Event: the singleton voting state (status, weights, limits, Phase 1 selection, overrides)
  - Team: a competing team and its two vote tallies
  - User: a voting principal keyed by login code
  - Vote: an immutable ballot, unique per (phase, voter)
  - TeamScore: derived final score and rank, never persisted

# Constants

Event statuses, in order:

	waiting → voting_p1 → closed_p1 → revealed_p1 → voting_p2 → closed_p2 → revealed_final

Phases are PhaseP1 (participants) and PhaseP2 (judges). Roles are participant, judge
and admin.

# Errors

Every user-facing failure is an *Error with a Kind that maps to an HTTP status
(see middleware.WriteError). Sentinels such as ErrAlreadyVoted match with
errors.Is even when the returned copy carries a more specific message:

	if errors.Is(err, models.ErrTeamNotFound) { ... }
*/
package models
