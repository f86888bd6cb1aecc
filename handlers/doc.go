// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the hackathon voting API.

# Handler Types

  - AuthHandler: login code exchange and the caller's own voting flags
  - VotingHandler: ballot submission through the vote ledger
  - ResultsHandler: public event view, team list and sealed results
  - AdminHandler: event lifecycle, configuration, tie resolution, resets

Handlers are created via constructor functions that take the services
they call:

	votingHandler := handlers.NewVotingHandler(votes)
	adminHandler := handlers.NewAdminHandler(events)

Authentication and role checks are done by middleware before a handler
runs; handlers read the caller with auth.PrincipalFrom.

# Event Lifecycle

	waiting → voting_p1 → closed_p1 → revealed_p1 → voting_p2 → closed_p2 → revealed_final

	POST /admin/event/status    → UpdateStatus (forward only)
	POST /admin/phase1/finalize → FinalizePhase1 (top 10 by participant votes)
	POST /admin/phase1/resolve  → ResolvePhase1 (completes a cutoff tie)
	POST /admin/final/resolve   → ResolveFinal (orders a podium tie)

Entering voting_p2 requires a committed Phase-1 selection; entering
revealed_final requires the podium to be tie-free or ordered by the admin.

# Voting

	POST /votes {"selectedTeams": ["alpha", "bravo"]}

Participants vote in phase 1, judges in phase 2 on the teams that advanced.
A second ballot in the same phase is a 409 Conflict.

# Errors

Errors from the services are written with middleware.WriteError, which
maps the error kind to a status and keeps the error code stable for
clients.
*/
package handlers
