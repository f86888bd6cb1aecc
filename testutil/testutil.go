// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/auth"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/cliparse"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/db"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// TestTokenSecret signs tokens in handler tests
const TestTokenSecret = "test-token-secret"

// SetupTestStore creates a fresh in-memory SQLite database with the full
// schema. Each call gets its own database.
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()

	ctx := context.Background()
	url := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	store, err := db.Open(ctx, "sqlite", url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.CreateSchema(ctx); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: "sqlite",
		TokenSecret:  TestTokenSecret,
		TokenTTL:     time.Hour,
	}
}

// CreateTestTeam inserts a visible team named after its id
func CreateTestTeam(t *testing.T, store *db.Store, id string) models.Team {
	t.Helper()

	team := models.Team{ID: id, Name: "Team " + id}
	if err := store.UpsertTeam(context.Background(), team); err != nil {
		t.Fatalf("Failed to create test team: %v", err)
	}
	return team
}

// CreateTestTeams inserts one team per id
func CreateTestTeams(t *testing.T, store *db.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		CreateTestTeam(t, store, id)
	}
}

// CreateTestUser inserts a user. teamID may be empty.
func CreateTestUser(t *testing.T, store *db.Store, id string, role models.Role, teamID string) models.User {
	t.Helper()

	user := models.User{ID: id, Name: "User " + id, Role: role}
	if teamID != "" {
		user.TeamID = &teamID
	}
	if err := store.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// UpdateEvent loads the event, applies fn and saves it
func UpdateEvent(t *testing.T, store *db.Store, fn func(*models.Event)) models.Event {
	t.Helper()

	ctx := context.Background()
	ev, err := store.GetEvent(ctx)
	if err != nil {
		t.Fatalf("Failed to load event: %v", err)
	}
	fn(&ev)
	if err := store.SaveEvent(ctx, ev); err != nil {
		t.Fatalf("Failed to save event: %v", err)
	}
	return ev
}

// SetEventStatus forces the event into status without transition checks
func SetEventStatus(t *testing.T, store *db.Store, status models.EventStatus) {
	t.Helper()
	UpdateEvent(t, store, func(ev *models.Event) { ev.Status = status })
}

// SetPhase1Selection commits a Phase-1 selection directly
func SetPhase1Selection(t *testing.T, store *db.Store, ids ...string) {
	t.Helper()
	UpdateEvent(t, store, func(ev *models.Event) {
		ev.Phase1SelectedTeamIDs = ids
		ev.Phase1TiedTeamIDs = []string{}
	})
}

// AddTallies adds counts to field without recording votes
func AddTallies(t *testing.T, store *db.Store, field models.TallyField, counts map[string]int) {
	t.Helper()

	ctx := context.Background()
	err := store.WithTx(ctx, func(tx ledger.Tx) error {
		for id, n := range counts {
			for range n {
				if err := tx.IncrementTally(ctx, field, []string{id}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to add tallies: %v", err)
	}
}

// AuthHeader returns an Authorization header carrying a token for user
func AuthHeader(t *testing.T, user models.User) map[string]string {
	t.Helper()

	p := models.Principal{UID: user.ID, Role: user.Role}
	if user.TeamID != nil {
		p.TeamID = *user.TeamID
	}
	token, _, err := auth.IssueToken(p, TestTokenSecret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks the status and the error code of a JSON error
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	AssertStatus(t, w, status)
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v (body %s)", err, w.Body.String())
	}
	if resp.Code != code {
		t.Errorf("Expected error code %q, got %q (%s)", code, resp.Code, resp.Message)
	}
}
