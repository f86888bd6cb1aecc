// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const eventColumns = `status, judge_weight, participant_weight, max_votes_per_user, max_votes_p1,
	max_votes_p2, voting_deadline, auto_close, phase1_selected_team_ids, phase1_tied_team_ids,
	final_ranking_overrides, updated_at`

// GetEvent returns the singleton event
func (s *Store) GetEvent(ctx context.Context) (models.Event, error) {
	var (
		ev                            models.Event
		status                        string
		maxPerUser, maxP1, maxP2      sql.NullInt64
		deadline                      sql.NullTime
		selected, tied, rankOverrides string
	)

	err := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM event WHERE id = 1`).Scan(
		&status, &ev.JudgeWeight, &ev.ParticipantWeight, &maxPerUser, &maxP1, &maxP2,
		&deadline, &ev.AutoClose, &selected, &tied, &rankOverrides, &ev.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, models.ErrNotFound.WithMessage("event not initialized")
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to query event: %w", err)
	}

	ev.Status = models.EventStatus(status)
	ev.MaxVotesPerUser = intFromNull(maxPerUser)
	ev.MaxVotesP1 = intFromNull(maxP1)
	ev.MaxVotesP2 = intFromNull(maxP2)
	if deadline.Valid {
		t := deadline.Time.UTC()
		ev.VotingDeadline = &t
	}
	ev.UpdatedAt = ev.UpdatedAt.UTC()

	if ev.Phase1SelectedTeamIDs, err = decodeIDs(selected); err != nil {
		return models.Event{}, err
	}
	if ev.Phase1TiedTeamIDs, err = decodeIDs(tied); err != nil {
		return models.Event{}, err
	}
	if ev.FinalRankingOverrides, err = decodeIDs(rankOverrides); err != nil {
		return models.Event{}, err
	}

	return ev, nil
}

// SaveEvent overwrites the singleton event; last write wins
func (s *Store) SaveEvent(ctx context.Context, ev models.Event) error {
	return s.saveEvent(ctx, s.db, ev)
}

func (s *Store) saveEvent(ctx context.Context, q querier, ev models.Event) error {
	selected, err := encodeIDs(ev.Phase1SelectedTeamIDs)
	if err != nil {
		return err
	}
	tied, err := encodeIDs(ev.Phase1TiedTeamIDs)
	if err != nil {
		return err
	}
	rankOverrides, err := encodeIDs(ev.FinalRankingOverrides)
	if err != nil {
		return err
	}

	var deadline any
	if ev.VotingDeadline != nil {
		deadline = ev.VotingDeadline.UTC()
	}

	updatedAt := ev.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = q.ExecContext(ctx, s.rebind(`
		UPDATE event SET
			status = $1, judge_weight = $2, participant_weight = $3,
			max_votes_per_user = $4, max_votes_p1 = $5, max_votes_p2 = $6,
			voting_deadline = $7, auto_close = $8,
			phase1_selected_team_ids = $9, phase1_tied_team_ids = $10,
			final_ranking_overrides = $11, updated_at = $12
		WHERE id = 1
	`), string(ev.Status), ev.JudgeWeight, ev.ParticipantWeight,
		nullFromInt(ev.MaxVotesPerUser), nullFromInt(ev.MaxVotesP1), nullFromInt(ev.MaxVotesP2),
		deadline, ev.AutoClose, selected, tied, rankOverrides, updatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

const teamColumns = `id, name, nickname, judge_vote_count, participant_vote_count, is_hidden, created_at`

func scanTeam(row interface{ Scan(...any) error }) (models.Team, error) {
	var (
		t        models.Team
		nickname sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &nickname, &t.JudgeVoteCount, &t.ParticipantVoteCount, &t.IsHidden, &t.CreatedAt); err != nil {
		return models.Team{}, err
	}
	if nickname.Valid {
		t.Nickname = &nickname.String
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// ListTeams returns every team, hidden ones included, ordered by id
func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM team ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

// GetTeamsByID returns the teams among ids that exist
func (s *Store) GetTeamsByID(ctx context.Context, ids []string) (map[string]models.Team, error) {
	found := make(map[string]models.Team, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+teamColumns+` FROM team WHERE id IN (`+strings.Join(marks, ", ")+`)`,
	), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		found[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return found, nil
}

func (s *Store) GetTeam(ctx context.Context, id string) (models.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+teamColumns+` FROM team WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Team{}, models.ErrNotFound.WithMessage("team %s not found", id)
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("failed to query team: %w", err)
	}
	return t, nil
}

// UpsertTeam creates a team or updates its name, nickname and visibility.
// Tallies are never touched here.
func (s *Store) UpsertTeam(ctx context.Context, t models.Team) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO team (id, name, nickname, is_hidden, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, nickname = excluded.nickname, is_hidden = excluded.is_hidden
	`), t.ID, t.Name, nullFromString(t.Nickname), t.IsHidden, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert team %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) SetTeamHidden(ctx context.Context, id string, hidden bool) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE team SET is_hidden = $1 WHERE id = $2`), hidden, id)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound.WithMessage("team %s not found", id)
	}
	return nil
}

const userColumns = `id, name, role, team_id, has_voted, has_voted_p1, has_voted_p2, created_at`

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM app_user WHERE id = $1`), id)
	return scanUser(row)
}

// FindUser returns the oldest user with this name, role and team. A nil
// teamID matches users without a team.
func (s *Store) FindUser(ctx context.Context, name string, role models.Role, teamID *string) (models.User, error) {
	team := ""
	if teamID != nil {
		team = *teamID
	}
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+userColumns+` FROM app_user
		WHERE name = $1 AND role = $2 AND COALESCE(team_id, '') = $3
		ORDER BY created_at, id
		LIMIT 1
	`), name, string(role), team)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		u      models.User
		role   string
		teamID sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &role, &teamID, &u.HasVoted, &u.HasVotedP1, &u.HasVotedP2, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	u.Role = models.Role(role)
	if teamID.Valid {
		u.TeamID = &teamID.String
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// UpsertUser creates a user or updates name, role and team. Voted flags
// are owned by the vote ledger and resets.
func (s *Store) UpsertUser(ctx context.Context, u models.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO app_user (id, name, role, team_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, role = excluded.role, team_id = excluded.team_id
	`), u.ID, u.Name, string(u.Role), nullFromString(u.TeamID), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// CountVotes returns the number of ballots cast per phase
func (s *Store) CountVotes(ctx context.Context) (map[models.Phase]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phase, COUNT(*) FROM vote GROUP BY phase`)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := map[models.Phase]int{models.PhaseP1: 0, models.PhaseP2: 0}
	for rows.Next() {
		var (
			p string
			n int
		)
		if err := rows.Scan(&p, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[models.Phase(p)] = n
	}
	return counts, rows.Err()
}

// ListVotes returns the ballots cast by one voter, oldest first
func (s *Store) ListVotes(ctx context.Context, voterID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, phase, voter_id, role, team_ids, created_at
		FROM vote WHERE voter_id = $1 ORDER BY created_at, phase
	`), voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var (
			v            models.Vote
			p, role, ids string
		)
		if err := rows.Scan(&v.ID, &p, &v.VoterID, &role, &ids, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Phase = models.Phase(p)
		v.Role = models.Role(role)
		if v.TeamIDs, err = decodeIDs(ids); err != nil {
			return nil, err
		}
		v.CreatedAt = v.CreatedAt.UTC()
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullFromInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullFromString(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode id list: %w", err)
	}
	return string(b), nil
}

func decodeIDs(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode id list: %w", err)
	}
	return ids, nil
}
