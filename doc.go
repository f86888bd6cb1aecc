// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the hackvote API server.

hackvote runs the voting for a hackathon demo day. Participants vote in
Phase 1 to pick the finalists, judges vote on the finalists in Phase 2,
and the final ranking blends both tallies with configurable weights.

# Starting the Server

The server reads flags, then environment variables, then a .env file:

	DATABASE_URL=hackvote.db TOKEN_SECRET=... go run .

Or with flags:

	go run . serve -p 3318 -d "postgres://..." -t postgres --token-secret ...

Load a roster and print the generated login codes:

	go run . seed -d hackvote.db --token-secret ... --seed roster.yaml

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - TOKEN_SECRET (--token-secret): HMAC key for bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TOKEN_TTL (--token-ttl): Token lifetime (default: 12h)
  - AUTO_ADVANCE_INTERVAL (--auto-advance-interval): Deadline check period, 0 disables (default: 5s)
  - SEED_FILE (--seed): YAML roster applied at startup
  - DEBUG (--debug): Debug logging

# Architecture

  - models: Domain, request and response types; classified errors
  - scoring: Score normalization, Phase-1 cutoff, tie detection, overrides
  - phase: Event lifecycle order and per-phase voting rules
  - ledger: Vote casting in one transaction
  - event: Status transitions, configuration, tie resolution, resets
  - db: SQLite and PostgreSQL persistence
  - auth: Login codes and signed tokens
  - handlers, router, middleware: HTTP surface
  - seed: YAML roster import
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
