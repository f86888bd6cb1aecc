// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/auth"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/middleware"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

type VotingHandler struct {
	votes *ledger.Service
}

func NewVotingHandler(votes *ledger.Service) *VotingHandler {
	return &VotingHandler{votes: votes}
}

// SubmitVote handles POST /votes. Role and phase checks are left to the
// ledger so the caller gets the specific reason.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		middleware.WriteError(w, models.ErrUnauthenticated)
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	receipt, err := h.votes.CastVote(r.Context(), ledger.Ballot{
		VoterID:         principal.UID,
		Role:            principal.Role,
		TeamID:          principal.TeamID,
		Phase:           req.Phase,
		SelectedTeamIDs: req.SelectedTeams,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		Success: true,
		Phase:   receipt.Phase,
	})
}
