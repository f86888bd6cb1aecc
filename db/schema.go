// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"time"
)

// CreateSchema creates all tables and the singleton event row.
// Safe to call multiple times - uses IF NOT EXISTS and ON CONFLICT.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO event (id, updated_at) VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING
	`), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create event row: %w", err)
	}

	return nil
}

// One statement per entry; the same DDL runs on Postgres and SQLite.
// Timestamps are always written by the application in UTC.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS event (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    status TEXT NOT NULL DEFAULT 'waiting' CHECK (status IN (
        'waiting', 'voting_p1', 'closed_p1', 'revealed_p1',
        'voting_p2', 'closed_p2', 'revealed_final')),
    judge_weight DOUBLE PRECISION NOT NULL DEFAULT 0.5,
    participant_weight DOUBLE PRECISION NOT NULL DEFAULT 0.5,
    max_votes_per_user INTEGER,
    max_votes_p1 INTEGER,
    max_votes_p2 INTEGER,
    voting_deadline TIMESTAMP,
    auto_close BOOLEAN NOT NULL DEFAULT FALSE,
    phase1_selected_team_ids TEXT NOT NULL DEFAULT '[]',
    phase1_tied_team_ids TEXT NOT NULL DEFAULT '[]',
    final_ranking_overrides TEXT NOT NULL DEFAULT '[]',
    updated_at TIMESTAMP NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS team (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    nickname TEXT,
    judge_vote_count INTEGER NOT NULL DEFAULT 0 CHECK (judge_vote_count >= 0),
    participant_vote_count INTEGER NOT NULL DEFAULT 0 CHECK (participant_vote_count >= 0),
    is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('participant', 'judge', 'admin')),
    team_id TEXT REFERENCES team(id) ON DELETE SET NULL,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    has_voted_p1 BOOLEAN NOT NULL DEFAULT FALSE,
    has_voted_p2 BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
)`,

	`CREATE INDEX IF NOT EXISTS idx_app_user_team_id ON app_user(team_id)`,

	`CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    phase TEXT NOT NULL CHECK (phase IN ('p1', 'p2')),
    voter_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    team_ids TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (phase, voter_id)
)`,

	`CREATE INDEX IF NOT EXISTS idx_vote_voter_id ON vote(voter_id)`,
}
