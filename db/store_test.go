// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, "sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.CreateSchema(ctx))
	return store
}

func strPtr(s string) *string { return &s }

func seedRoster(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	for _, tm := range []models.Team{
		{ID: "alpha", Name: "Alpha"},
		{ID: "bravo", Name: "Bravo", Nickname: strPtr("B")},
		{ID: "charlie", Name: "Charlie"},
	} {
		require.NoError(t, store.UpsertTeam(ctx, tm))
	}
	for _, u := range []models.User{
		{ID: "P-1", Name: "Pat", Role: models.RoleParticipant, TeamID: strPtr("alpha")},
		{ID: "J-1", Name: "Jo", Role: models.RoleJudge},
		{ID: "A-1", Name: "Ad", Role: models.RoleAdmin},
	} {
		require.NoError(t, store.UpsertUser(ctx, u))
	}
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateSchema(ctx))

	ev, err := store.GetEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, ev.Status)
	assert.Equal(t, models.DefaultJudgeWeight, ev.JudgeWeight)
	assert.Equal(t, models.DefaultParticipantWeight, ev.ParticipantWeight)
	assert.Nil(t, ev.MaxVotesP1)
	assert.Nil(t, ev.VotingDeadline)
	assert.Empty(t, ev.Phase1SelectedTeamIDs)
	assert.NotNil(t, ev.FinalRankingOverrides)
}

func TestSaveEventRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	deadline := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	limit := 5
	ev := models.Event{
		Status:                models.StatusRevealedP1,
		JudgeWeight:           0.7,
		ParticipantWeight:     0.3,
		MaxVotesP2:            &limit,
		VotingDeadline:        &deadline,
		AutoClose:             true,
		Phase1SelectedTeamIDs: []string{"bravo", "alpha"},
		Phase1TiedTeamIDs:     []string{},
		FinalRankingOverrides: []string{"alpha", "bravo", "charlie"},
		UpdatedAt:             deadline,
	}
	require.NoError(t, store.SaveEvent(ctx, ev))

	got, err := store.GetEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, ev.Status, got.Status)
	assert.InDelta(t, 0.7, got.JudgeWeight, 1e-12)
	assert.Nil(t, got.MaxVotesP1)
	require.NotNil(t, got.MaxVotesP2)
	assert.Equal(t, 5, *got.MaxVotesP2)
	require.NotNil(t, got.VotingDeadline)
	assert.True(t, deadline.Equal(*got.VotingDeadline))
	assert.True(t, got.AutoClose)
	assert.Equal(t, []string{"bravo", "alpha"}, got.Phase1SelectedTeamIDs)
	assert.Equal(t, ev.FinalRankingOverrides, got.FinalRankingOverrides)

	ev.VotingDeadline = nil
	require.NoError(t, store.SaveEvent(ctx, ev))
	got, err = store.GetEvent(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.VotingDeadline)
}

func TestTeamsAndUsers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedRoster(t, store)

	teams, err := store.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, "alpha", teams[0].ID)
	require.NotNil(t, teams[1].Nickname)
	assert.Equal(t, "B", *teams[1].Nickname)

	found, err := store.GetTeamsByID(ctx, []string{"charlie", "nope", "alpha"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Contains(t, found, "charlie")
	assert.NotContains(t, found, "nope")

	require.NoError(t, store.SetTeamHidden(ctx, "charlie", true))
	charlie, err := store.GetTeam(ctx, "charlie")
	require.NoError(t, err)
	assert.True(t, charlie.IsHidden)

	assert.ErrorIs(t, store.SetTeamHidden(ctx, "nope", true), models.ErrNotFound)
	_, err = store.GetTeam(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)

	user, err := store.GetUser(ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleParticipant, user.Role)
	require.NotNil(t, user.TeamID)
	assert.Equal(t, "alpha", *user.TeamID)
	assert.False(t, user.HasVotedP1)

	_, err = store.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func castDirect(t *testing.T, store *Store, voterID string, p models.Phase, field models.TallyField, teamIDs ...string) error {
	t.Helper()
	ctx := context.Background()
	return store.WithTx(ctx, func(tx ledger.Tx) error {
		voted, err := tx.LockVoter(ctx, voterID, p)
		if err != nil {
			return err
		}
		if voted {
			return models.ErrAlreadyVoted
		}
		if err := tx.InsertVote(ctx, models.Vote{
			ID: uuid.NewString(), VoterID: voterID, Phase: p, TeamIDs: teamIDs,
			Role: models.RoleParticipant, CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		if err := tx.IncrementTally(ctx, field, teamIDs); err != nil {
			return err
		}
		return tx.MarkVoted(ctx, voterID, p)
	})
}

func TestWithTxCommitsVote(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedRoster(t, store)

	require.NoError(t, castDirect(t, store, "P-1", models.PhaseP1, models.TallyParticipant, "charlie", "bravo"))

	user, err := store.GetUser(ctx, "P-1")
	require.NoError(t, err)
	assert.True(t, user.HasVoted)
	assert.True(t, user.HasVotedP1)
	assert.False(t, user.HasVotedP2)

	found, err := store.GetTeamsByID(ctx, []string{"bravo", "charlie", "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 1, found["bravo"].ParticipantVoteCount)
	assert.Equal(t, 1, found["charlie"].ParticipantVoteCount)
	assert.Equal(t, 0, found["alpha"].ParticipantVoteCount)
	assert.Equal(t, 0, found["bravo"].JudgeVoteCount)

	votes, err := store.ListVotes(ctx, "P-1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, []string{"charlie", "bravo"}, votes[0].TeamIDs)

	err = castDirect(t, store, "P-1", models.PhaseP1, models.TallyParticipant, "bravo")
	assert.ErrorIs(t, err, models.ErrAlreadyVoted)

	counts, err := store.CountVotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.PhaseP1])
	assert.Equal(t, 0, counts[models.PhaseP2])
}

func TestWithTxUniqueBallot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedRoster(t, store)

	// Skip the flag check so only the UNIQUE constraint stands in the way
	insert := func() error {
		return store.WithTx(ctx, func(tx ledger.Tx) error {
			return tx.InsertVote(ctx, models.Vote{
				ID: uuid.NewString(), VoterID: "J-1", Phase: models.PhaseP2,
				TeamIDs: []string{"alpha"}, Role: models.RoleJudge, CreatedAt: time.Now(),
			})
		})
	}

	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), models.ErrAlreadyVoted)
}

func TestWithTxRollsBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedRoster(t, store)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx ledger.Tx) error {
		if err := tx.IncrementTally(ctx, models.TallyJudge, []string{"alpha"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	alpha, err := store.GetTeam(ctx, "alpha")
	require.NoError(t, err)
	assert.Zero(t, alpha.JudgeVoteCount)

	err = castDirect(t, store, "ghost", models.PhaseP1, models.TallyParticipant, "alpha")
	assert.ErrorIs(t, err, models.ErrUnknownVoter)

	err = castDirect(t, store, "J-1", models.PhaseP2, models.TallyJudge, "alpha", "deleted")
	assert.ErrorIs(t, err, models.ErrTeamNotFound)
	alpha, err = store.GetTeam(ctx, "alpha")
	require.NoError(t, err)
	assert.Zero(t, alpha.JudgeVoteCount)
}

func TestReset(t *testing.T) {
	ctx := context.Background()

	prepare := func(t *testing.T) *Store {
		store := openTestStore(t)
		seedRoster(t, store)
		require.NoError(t, castDirect(t, store, "P-1", models.PhaseP1, models.TallyParticipant, "bravo"))
		require.NoError(t, castDirect(t, store, "J-1", models.PhaseP2, models.TallyJudge, "bravo"))
		return store
	}

	t.Run("all votes", func(t *testing.T) {
		store := prepare(t)
		require.NoError(t, store.Reset(ctx, models.ResetAllVotes, models.DefaultEvent()))

		counts, err := store.CountVotes(ctx)
		require.NoError(t, err)
		assert.Zero(t, counts[models.PhaseP1]+counts[models.PhaseP2])

		bravo, err := store.GetTeam(ctx, "bravo")
		require.NoError(t, err)
		assert.Zero(t, bravo.ParticipantVoteCount)
		assert.Zero(t, bravo.JudgeVoteCount)

		user, err := store.GetUser(ctx, "P-1")
		require.NoError(t, err)
		assert.False(t, user.HasVoted)
		assert.False(t, user.HasVotedP1)
	})

	t.Run("phase 2 votes", func(t *testing.T) {
		store := prepare(t)
		ev := models.DefaultEvent()
		ev.Status = models.StatusRevealedP1
		require.NoError(t, store.Reset(ctx, models.ResetPhase2Votes, ev))

		counts, err := store.CountVotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[models.PhaseP1])
		assert.Zero(t, counts[models.PhaseP2])

		bravo, err := store.GetTeam(ctx, "bravo")
		require.NoError(t, err)
		assert.Equal(t, 1, bravo.ParticipantVoteCount)
		assert.Zero(t, bravo.JudgeVoteCount)

		participant, err := store.GetUser(ctx, "P-1")
		require.NoError(t, err)
		assert.True(t, participant.HasVoted)
		judge, err := store.GetUser(ctx, "J-1")
		require.NoError(t, err)
		assert.False(t, judge.HasVoted)
		assert.False(t, judge.HasVotedP2)

		got, err := store.GetEvent(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRevealedP1, got.Status)
	})

	t.Run("everything", func(t *testing.T) {
		store := prepare(t)
		require.NoError(t, store.Reset(ctx, models.ResetEverything, models.DefaultEvent()))

		teams, err := store.ListTeams(ctx)
		require.NoError(t, err)
		assert.Empty(t, teams)

		_, err = store.GetUser(ctx, "P-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
		admin, err := store.GetUser(ctx, "A-1")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, admin.Role)
	})

	t.Run("unknown scope", func(t *testing.T) {
		store := openTestStore(t)
		assert.Error(t, store.Reset(ctx, "bogus", models.DefaultEvent()))
	})
}

func TestRebind(t *testing.T) {
	lite := &Store{dialect: SQLite}
	pg := &Store{dialect: Postgres}

	q := `SELECT a FROM t WHERE b = $1 AND c = $12`
	assert.Equal(t, `SELECT a FROM t WHERE b = ?1 AND c = ?12`, lite.rebind(q))
	assert.Equal(t, q, pg.rebind(q))
}

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "whatever")
	assert.Error(t, err)
}
