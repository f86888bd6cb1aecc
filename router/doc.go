// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the hackvote API.

# Route Registration

NewServices builds the event and vote services once, registering their
metrics on the given registry. NewRouter wires them into a ServeMux:

	svc := router.NewServices(store, logger, reg)
	mux := router.NewRouter(store, cfg, svc, reg)

# Endpoints

Health and metrics:

	GET /health  - Pings the database
	GET /metrics - Prometheus exposition (when a gatherer is given)

Login (no token):

	POST /auth/login - Exchange a login code for a bearer token

Any authenticated role:

	GET  /me      - Principal and voted flags
	GET  /event   - Public event view
	GET  /teams   - Visible teams, no tallies
	GET  /results - Sealed until revealed_p1
	POST /votes   - Cast a ballot in the open phase

Admin only:

	POST  /admin/event/status    - Move the event forward
	PATCH /admin/event/config    - Weights, limits, deadline, auto-close
	POST  /admin/phase1/finalize - Run the Phase-1 cutoff
	POST  /admin/phase1/resolve  - Complete a tied cutoff
	POST  /admin/final/resolve   - Order a tied podium
	POST  /admin/reset/votes     - Clear all votes
	POST  /admin/reset/phase2    - Clear judge votes
	POST  /admin/reset/all       - Clear teams, voters and votes
	PATCH /admin/teams/{id}      - Hide or show a team
	GET   /admin/results         - Live standings

Every route except /health and /metrics is wrapped in WithLogging.
*/
package router
