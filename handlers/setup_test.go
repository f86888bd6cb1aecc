// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/cliparse"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/db"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/event"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/middleware"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/testutil"
)

type testEnv struct {
	store   *db.Store
	cfg     cliparse.Config
	events  *event.Service
	auth    *AuthHandler
	voting  *VotingHandler
	results *ResultsHandler
	admin   *AdminHandler
}

// newTestEnv wires the handlers over a fresh database. topN of 0 keeps
// the default Phase-1 cutoff.
func newTestEnv(t *testing.T, topN int) *testEnv {
	t.Helper()

	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	events := event.NewService(event.Config{Store: store, TopN: topN})
	votes := ledger.NewService(ledger.Config{Store: store})

	return &testEnv{
		store:   store,
		cfg:     cfg,
		events:  events,
		auth:    NewAuthHandler(store, cfg),
		voting:  NewVotingHandler(votes),
		results: NewResultsHandler(events),
		admin:   NewAdminHandler(events),
	}
}

// authed puts h behind the same auth chain the router uses
func authed(h http.HandlerFunc, roles ...models.Role) http.HandlerFunc {
	if len(roles) > 0 {
		h = middleware.RequireRole(h, roles...)
	}
	return middleware.RequireAuth(testutil.TestTokenSecret, h)
}

func adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return authed(h, models.RoleAdmin)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func (e *testEnv) vote(t *testing.T, user models.User, teams ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("POST", "/votes", models.SubmitVoteRequest{SelectedTeams: teams}, testutil.AuthHeader(t, user))
	return serve(authed(e.voting.SubmitVote), req)
}

func (e *testEnv) setStatus(t *testing.T, admin models.User, status models.EventStatus) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("POST", "/admin/event/status", models.UpdateStatusRequest{Status: status}, testutil.AuthHeader(t, admin))
	return serve(adminOnly(e.admin.UpdateStatus), req)
}

func (e *testEnv) team(t *testing.T, id string) models.Team {
	t.Helper()
	team, err := e.store.GetTeam(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to load team %s: %v", id, err)
	}
	return team
}

func (e *testEnv) user(t *testing.T, id string) models.User {
	t.Helper()
	u, err := e.store.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to load user %s: %v", id, err)
	}
	return u
}
