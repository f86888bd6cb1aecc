// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

// memStore is an in-memory ledger.Store. A transaction works on a copy
// that replaces the state only on commit.
type memStore struct {
	mu     sync.Mutex
	event  models.Event
	teams  map[string]models.Team
	voters map[string]map[models.Phase]bool
	votes  []models.Vote

	txCalls int
	failTx  error
}

func newMemStore(status models.EventStatus, teamIDs ...string) *memStore {
	s := &memStore{
		event:  models.DefaultEvent(),
		teams:  make(map[string]models.Team),
		voters: make(map[string]map[models.Phase]bool),
	}
	s.event.Status = status
	for _, id := range teamIDs {
		s.teams[id] = models.Team{ID: id, Name: "Team " + id}
	}
	return s
}

func (s *memStore) addVoter(id string) {
	s.voters[id] = map[models.Phase]bool{}
}

func (s *memStore) GetEvent(context.Context) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event, nil
}

func (s *memStore) GetTeamsByID(_ context.Context, ids []string) (map[string]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Team)
	for _, id := range ids {
		if t, ok := s.teams[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (s *memStore) WithTx(_ context.Context, fn func(ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCalls++
	if s.failTx != nil {
		return s.failTx
	}

	tx := &memTx{
		teams:  make(map[string]models.Team, len(s.teams)),
		voters: make(map[string]map[models.Phase]bool, len(s.voters)),
		votes:  append([]models.Vote(nil), s.votes...),
	}
	for id, t := range s.teams {
		tx.teams[id] = t
	}
	for id, flags := range s.voters {
		tx.voters[id] = map[models.Phase]bool{models.PhaseP1: flags[models.PhaseP1], models.PhaseP2: flags[models.PhaseP2]}
	}

	if err := fn(tx); err != nil {
		return err
	}
	s.teams, s.voters, s.votes = tx.teams, tx.voters, tx.votes
	return nil
}

type memTx struct {
	teams  map[string]models.Team
	voters map[string]map[models.Phase]bool
	votes  []models.Vote
}

func (tx *memTx) LockVoter(_ context.Context, voterID string, p models.Phase) (bool, error) {
	flags, ok := tx.voters[voterID]
	if !ok {
		return false, models.ErrUnknownVoter
	}
	return flags[p], nil
}

func (tx *memTx) InsertVote(_ context.Context, v models.Vote) error {
	for _, existing := range tx.votes {
		if existing.Phase == v.Phase && existing.VoterID == v.VoterID {
			return models.ErrAlreadyVoted
		}
	}
	tx.votes = append(tx.votes, v)
	return nil
}

func (tx *memTx) IncrementTally(_ context.Context, field models.TallyField, teamIDs []string) error {
	for _, id := range teamIDs {
		t, ok := tx.teams[id]
		if !ok {
			return models.ErrTeamNotFound
		}
		if field == models.TallyJudge {
			t.JudgeVoteCount++
		} else {
			t.ParticipantVoteCount++
		}
		tx.teams[id] = t
	}
	return nil
}

func (tx *memTx) MarkVoted(_ context.Context, voterID string, p models.Phase) error {
	tx.voters[voterID][p] = true
	return nil
}

func participant(id string, teams ...string) ledger.Ballot {
	return ledger.Ballot{VoterID: id, Role: models.RoleParticipant, SelectedTeamIDs: teams}
}

func TestCastVote(t *testing.T) {
	store := newMemStore(models.StatusVotingP1, "alpha", "bravo", "charlie")
	store.addVoter("PART0001")
	fixed := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	svc := ledger.NewService(ledger.Config{Store: store, Now: func() time.Time { return fixed }})

	receipt, err := svc.CastVote(context.Background(), participant("PART0001", "charlie", "alpha", "charlie", ""))
	require.NoError(t, err)

	assert.Equal(t, models.PhaseP1, receipt.Phase)
	assert.Equal(t, []string{"charlie", "alpha"}, receipt.TeamIDs)
	assert.NotEmpty(t, receipt.VoteID)

	require.Len(t, store.votes, 1)
	v := store.votes[0]
	assert.Equal(t, receipt.VoteID, v.ID)
	assert.Equal(t, models.RoleParticipant, v.Role)
	assert.Equal(t, fixed, v.CreatedAt)

	assert.Equal(t, 1, store.teams["alpha"].ParticipantVoteCount)
	assert.Equal(t, 0, store.teams["bravo"].ParticipantVoteCount)
	assert.Equal(t, 1, store.teams["charlie"].ParticipantVoteCount)
	assert.Zero(t, store.teams["alpha"].JudgeVoteCount)
	assert.True(t, store.voters["PART0001"][models.PhaseP1])
	assert.False(t, store.voters["PART0001"][models.PhaseP2])

	_, err = svc.CastVote(context.Background(), participant("PART0001", "bravo"))
	assert.ErrorIs(t, err, models.ErrAlreadyVoted)
	assert.Equal(t, 0, store.teams["bravo"].ParticipantVoteCount)
}

func TestCastVoteJudge(t *testing.T) {
	store := newMemStore(models.StatusVotingP2, "alpha", "bravo", "charlie")
	store.event.Phase1SelectedTeamIDs = []string{"alpha", "bravo"}
	store.addVoter("JUDGE001")
	svc := ledger.NewService(ledger.Config{Store: store})

	receipt, err := svc.CastVote(context.Background(), ledger.Ballot{
		VoterID:         "JUDGE001",
		Role:            models.RoleJudge,
		Phase:           models.PhaseP2,
		SelectedTeamIDs: []string{"bravo"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseP2, receipt.Phase)
	assert.Equal(t, 1, store.teams["bravo"].JudgeVoteCount)
	assert.Zero(t, store.teams["bravo"].ParticipantVoteCount)
	assert.True(t, store.voters["JUDGE001"][models.PhaseP2])
}

// TestCastVoteCheckOrder pins which error wins when a ballot breaks
// several rules at once
func TestCastVoteCheckOrder(t *testing.T) {
	testCases := []struct {
		name    string
		status  models.EventStatus
		ballot  ledger.Ballot
		wantErr error
	}{
		{
			name:    "empty selection before phase",
			status:  models.StatusWaiting,
			ballot:  participant("PART0001"),
			wantErr: models.ErrEmptySelection,
		},
		{
			name:    "phase before role",
			status:  models.StatusWaiting,
			ballot:  ledger.Ballot{VoterID: "JUDGE001", Role: models.RoleJudge, SelectedTeamIDs: []string{"alpha"}},
			wantErr: models.ErrPhaseMismatch,
		},
		{
			name:    "role before size",
			status:  models.StatusVotingP1,
			ballot:  ledger.Ballot{VoterID: "JUDGE001", Role: models.RoleJudge, SelectedTeamIDs: []string{"a", "b", "c", "d"}},
			wantErr: models.ErrRoleMismatch,
		},
		{
			name:    "size before self vote",
			status:  models.StatusVotingP1,
			ballot:  ledger.Ballot{VoterID: "PART0001", Role: models.RoleParticipant, TeamID: "alpha", SelectedTeamIDs: []string{"alpha", "bravo", "charlie", "ghost"}},
			wantErr: models.ErrTooManyTeams,
		},
		{
			name:    "self vote before existence",
			status:  models.StatusVotingP1,
			ballot:  ledger.Ballot{VoterID: "PART0001", Role: models.RoleParticipant, TeamID: "alpha", SelectedTeamIDs: []string{"ghost", "alpha"}},
			wantErr: models.ErrSelfVote,
		},
		{
			name:    "existence in selection order",
			status:  models.StatusVotingP1,
			ballot:  participant("PART0001", "ghost", "hidden"),
			wantErr: models.ErrTeamNotFound,
		},
		{
			name:    "hidden team",
			status:  models.StatusVotingP1,
			ballot:  participant("PART0001", "hidden", "ghost"),
			wantErr: models.ErrTeamHidden,
		},
		{
			name:    "pool before self vote",
			status:  models.StatusVotingP2,
			ballot:  ledger.Ballot{VoterID: "JUDGE001", Role: models.RoleJudge, TeamID: "charlie", SelectedTeamIDs: []string{"charlie"}},
			wantErr: models.ErrNotInPhase1Pool,
		},
		{
			name:    "unknown voter inside the transaction",
			status:  models.StatusVotingP1,
			ballot:  participant("NOBODY01", "alpha"),
			wantErr: models.ErrUnknownVoter,
		},
		{
			name:    "missing principal",
			status:  models.StatusVotingP1,
			ballot:  participant("", "alpha"),
			wantErr: models.ErrUnauthenticated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore(tc.status, "alpha", "bravo", "charlie", "hidden")
			store.teams["hidden"] = models.Team{ID: "hidden", IsHidden: true}
			store.event.Phase1SelectedTeamIDs = []string{"alpha", "bravo"}
			store.addVoter("PART0001")
			store.addVoter("JUDGE001")
			svc := ledger.NewService(ledger.Config{Store: store})

			_, err := svc.CastVote(context.Background(), tc.ballot)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, store.votes)

			// Only the voter lookup needs a transaction
			if !errors.Is(tc.wantErr, models.ErrUnknownVoter) {
				assert.Zero(t, store.txCalls)
			}
		})
	}
}

func TestCastVoteLimits(t *testing.T) {
	two, five := 2, 5

	testCases := []struct {
		name     string
		perUser  *int
		perPhase *int
		selected int
		wantErr  error
	}{
		{"default allows three", nil, nil, 3, nil},
		{"default rejects four", nil, nil, 4, models.ErrTooManyTeams},
		{"legacy limit", &five, nil, 5, nil},
		{"phase limit wins", &five, &two, 3, models.ErrTooManyTeams},
		{"phase limit allows", &five, &two, 2, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids := []string{"t1", "t2", "t3", "t4", "t5"}
			store := newMemStore(models.StatusVotingP1, ids...)
			store.event.MaxVotesPerUser = tc.perUser
			store.event.MaxVotesP1 = tc.perPhase
			store.addVoter("PART0001")
			svc := ledger.NewService(ledger.Config{Store: store})

			_, err := svc.CastVote(context.Background(), participant("PART0001", ids[:tc.selected]...))
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestCastVoteStoreFailure(t *testing.T) {
	store := newMemStore(models.StatusVotingP1, "alpha")
	store.addVoter("PART0001")
	store.failTx = errors.New("disk on fire")
	svc := ledger.NewService(ledger.Config{Store: store})

	_, err := svc.CastVote(context.Background(), participant("PART0001", "alpha"))
	require.Error(t, err)
	assert.Equal(t, models.KindInternal, models.KindOf(err))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, ledger.Dedupe([]string{"b", "a", "", "b", "c", "a"}))
	assert.Empty(t, ledger.Dedupe(nil))
	assert.Empty(t, ledger.Dedupe([]string{"", ""}))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCastVoteMetrics(t *testing.T) {
	store := newMemStore(models.StatusVotingP1, "alpha", "bravo")
	store.addVoter("PART0001")
	store.addVoter("PART0002")
	reg := prometheus.NewRegistry()
	svc := ledger.NewService(ledger.Config{Store: store, PromRegistry: reg})
	ctx := context.Background()

	_, err := svc.CastVote(ctx, participant("PART0001", "alpha"))
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, participant("PART0002", "alpha", "bravo"))
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, participant("PART0001", "bravo"))
	require.Error(t, err)
	_, err = svc.CastVote(ctx, participant("PART0002"))
	require.Error(t, err)

	assert.Equal(t, 2.0, counterValue(t, reg, "hackvote_votes_cast_total", "phase", "p1"))
	assert.Equal(t, 1.0, counterValue(t, reg, "hackvote_vote_rejections_total", "code", "already_voted"))
	assert.Equal(t, 1.0, counterValue(t, reg, "hackvote_vote_rejections_total", "code", "empty_selection"))
}

// TestCastVoteSQLiteConcurrency runs the ledger against the real store
func TestCastVoteSQLiteConcurrency(t *testing.T) {
	store := testutil.SetupTestStore(t)
	testutil.CreateTestTeams(t, store, "alpha", "bravo", "charlie")
	testutil.SetEventStatus(t, store, models.StatusVotingP1)
	svc := ledger.NewService(ledger.Config{Store: store})

	const voters = 20
	for i := range voters {
		testutil.CreateTestUser(t, store, fmt.Sprintf("VOTER%03d", i), models.RoleParticipant, "")
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters*2)
	for i := range voters {
		id := fmt.Sprintf("VOTER%03d", i)
		// Each voter submits twice at once
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.CastVote(context.Background(), participant(id, "alpha", "charlie"))
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrAlreadyVoted):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, voters, ok)
	assert.Equal(t, voters, dup)

	ctx := context.Background()
	for id, want := range map[string]int{"alpha": voters, "bravo": 0, "charlie": voters} {
		team, err := store.GetTeam(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, team.ParticipantVoteCount, "team %s", id)
	}
	counts, err := store.CountVotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, voters, counts[models.PhaseP1])
}
