// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/event"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/middleware"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// AdminHandler exposes the event controls. Every route is admin-only.
type AdminHandler struct {
	events *event.Service
}

func NewAdminHandler(events *event.Service) *AdminHandler {
	return &AdminHandler{events: events}
}

// UpdateStatus handles POST /admin/event/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Status == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status is required")
		return
	}

	resp, err := h.events.UpdateEventStatus(r.Context(), req.Status)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// UpdateConfig handles PATCH /admin/event/config
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateConfigRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ev, err := h.events.UpdateEventConfig(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ev)
}

// FinalizePhase1 handles POST /admin/phase1/finalize
func (h *AdminHandler) FinalizePhase1(w http.ResponseWriter, r *http.Request) {
	resp, err := h.events.FinalizePhase1(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ResolvePhase1 handles POST /admin/phase1/resolve
func (h *AdminHandler) ResolvePhase1(w http.ResponseWriter, r *http.Request) {
	var req models.ResolvePhase1Request
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ev, err := h.events.ResolvePhase1Ties(r.Context(), req.SelectedTeamIDs)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ev)
}

// ResolveFinal handles POST /admin/final/resolve. An empty list clears the
// stored podium order.
func (h *AdminHandler) ResolveFinal(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveFinalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	results, err := h.events.ResolveFinalTies(r.Context(), req.RankedTeamIDs)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}

// ResetVotes handles POST /admin/reset/votes
func (h *AdminHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, h.events.ResetVotes)
}

// ResetPhase2 handles POST /admin/reset/phase2
func (h *AdminHandler) ResetPhase2(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, h.events.ResetPhase2Votes)
}

// ResetAll handles POST /admin/reset/all
func (h *AdminHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, h.events.ResetAll)
}

func (h *AdminHandler) reset(w http.ResponseWriter, r *http.Request, fn func(context.Context) (models.Event, error)) {
	ev, err := fn(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ev)
}

// SetTeamHidden handles PATCH /admin/teams/{id}
func (h *AdminHandler) SetTeamHidden(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("id")
	if teamID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "team id is required")
		return
	}

	var req models.SetTeamHiddenRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	team, err := h.events.SetTeamHidden(r.Context(), teamID, req.IsHidden)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, team)
}

// GetResults handles GET /admin/results
func (h *AdminHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.events.AdminResults(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}
