// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the SQL repository for the voting engine.

# Opening

	store, err := db.Open(ctx, "postgres", url) // or "sqlite"
	if err != nil {
		log.Fatal(err)
	}
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times. SQLite connections are limited
to one so transactions serialize; queries are written with $N placeholders
and rewritten for SQLite.

# Tables

  - event: the singleton event row (id = 1); id lists are JSON text
  - team: teams and their two vote tallies
  - app_user: voters and admins with per-phase voted flags
  - vote: immutable ballots, UNIQUE (phase, voter_id)

# Transactions

WithTx implements the vote ledger's transaction. The voter row is locked
with SELECT ... FOR UPDATE on Postgres, team rows are incremented in id order
and serialization failures are retried. A duplicate (phase, voter_id) insert
surfaces as models.ErrAlreadyVoted.

Reset clears votes, tallies and flags for a scope and rewrites the event in
the same transaction.
*/
package db
