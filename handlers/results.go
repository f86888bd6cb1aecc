// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/event"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/middleware"
)

// ResultsHandler serves the read-only views any signed-in user may see
type ResultsHandler struct {
	events *event.Service
}

func NewResultsHandler(events *event.Service) *ResultsHandler {
	return &ResultsHandler{events: events}
}

// GetEvent handles GET /event
func (h *ResultsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.events.PublicEvent(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ev)
}

// ListTeams handles GET /teams
func (h *ResultsHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.events.PublicTeams(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, teams)
}

// GetResults handles GET /results (sealed until revealed_p1)
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.events.Results(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}
