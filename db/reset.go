// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

var resetStatements = map[models.ResetScope][]string{
	models.ResetAllVotes: {
		`DELETE FROM vote`,
		`UPDATE team SET judge_vote_count = 0, participant_vote_count = 0`,
		`UPDATE app_user SET has_voted = $1, has_voted_p1 = $1, has_voted_p2 = $1`,
	},
	models.ResetPhase2Votes: {
		`DELETE FROM vote WHERE phase = 'p2'`,
		`UPDATE team SET judge_vote_count = 0`,
		`UPDATE app_user SET has_voted_p2 = $1, has_voted = has_voted_p1`,
	},
	models.ResetEverything: {
		`DELETE FROM vote`,
		`DELETE FROM app_user WHERE role <> 'admin'`,
		`DELETE FROM team`,
		`UPDATE app_user SET has_voted = $1, has_voted_p1 = $1, has_voted_p2 = $1`,
	},
}

// Reset clears the data covered by scope and stores ev, all in one
// transaction
func (s *Store) Reset(ctx context.Context, scope models.ResetScope, ev models.Event) error {
	stmts, ok := resetStatements[scope]
	if !ok {
		return fmt.Errorf("unknown reset scope %q", scope)
	}

	return s.retryTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			var args []any
			if containsPlaceholder(stmt) {
				args = append(args, false)
			}
			if _, err := tx.ExecContext(ctx, s.rebind(stmt), args...); err != nil {
				return fmt.Errorf("failed to reset %s: %w", scope, err)
			}
		}
		return s.saveEvent(ctx, tx, ev)
	})
}

func containsPlaceholder(stmt string) bool {
	return placeholder.MatchString(stmt)
}
