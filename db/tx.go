// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

const maxTxAttempts = 4

// WithTx runs fn in a transaction and retries it after serialization
// failures or deadlocks. fn must use only the Tx it is given.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Tx) error) error {
	return s.retryTx(ctx, func(tx *sql.Tx) error {
		return fn(&voteTx{tx: tx, store: s})
	})
}

func (s *Store) retryTx(ctx context.Context, fn func(*sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}

		s.logger.Warn("transaction conflict, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", maxTxAttempts, err)
}

func (s *Store) runTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// voteTx implements ledger.Tx
type voteTx struct {
	tx    *sql.Tx
	store *Store
}

func votedColumn(p models.Phase) (string, error) {
	switch p {
	case models.PhaseP1:
		return "has_voted_p1", nil
	case models.PhaseP2:
		return "has_voted_p2", nil
	}
	return "", fmt.Errorf("unknown phase %q", p)
}

func tallyColumn(f models.TallyField) (string, error) {
	switch f {
	case models.TallyParticipant, models.TallyJudge:
		return string(f), nil
	}
	return "", fmt.Errorf("unknown tally field %q", f)
}

func (t *voteTx) LockVoter(ctx context.Context, voterID string, p models.Phase) (bool, error) {
	col, err := votedColumn(p)
	if err != nil {
		return false, err
	}

	query := `SELECT ` + col + ` FROM app_user WHERE id = $1`
	// SQLite already holds the write lock from BEGIN IMMEDIATE
	if t.store.dialect == Postgres {
		query += ` FOR UPDATE`
	}

	var voted bool
	err = t.tx.QueryRowContext(ctx, t.store.rebind(query), voterID).Scan(&voted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, models.ErrUnknownVoter
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock voter: %w", err)
	}
	return voted, nil
}

func (t *voteTx) InsertVote(ctx context.Context, v models.Vote) error {
	teamIDs, err := encodeIDs(v.TeamIDs)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx, t.store.rebind(`
		INSERT INTO vote (id, phase, voter_id, role, team_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`), v.ID, string(v.Phase), v.VoterID, string(v.Role), teamIDs, v.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return models.ErrAlreadyVoted
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// IncrementTally updates teams in id order so concurrent voters always take
// row locks in the same sequence
func (t *voteTx) IncrementTally(ctx context.Context, field models.TallyField, teamIDs []string) error {
	col, err := tallyColumn(field)
	if err != nil {
		return err
	}

	ordered := slices.Clone(teamIDs)
	slices.Sort(ordered)

	query := t.store.rebind(`UPDATE team SET ` + col + ` = ` + col + ` + 1 WHERE id = $1`)
	for _, id := range ordered {
		res, err := t.tx.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to increment %s for team %s: %w", col, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n != 1 {
			return models.ErrTeamNotFound.WithMessage("team %s not found", id)
		}
	}
	return nil
}

func (t *voteTx) MarkVoted(ctx context.Context, voterID string, p models.Phase) error {
	col, err := votedColumn(p)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx, t.store.rebind(
		`UPDATE app_user SET has_voted = $1, `+col+` = $1 WHERE id = $2`,
	), true, voterID)
	if err != nil {
		return fmt.Errorf("failed to mark voter: %w", err)
	}
	return nil
}
