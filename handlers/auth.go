// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/auth"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/cliparse"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/middleware"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// UserStore looks users up by login code
type UserStore interface {
	GetUser(ctx context.Context, id string) (models.User, error)
}

type AuthHandler struct {
	users UserStore
	cfg   cliparse.Config
}

func NewAuthHandler(users UserStore, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	code := auth.NormalizeCode(req.Code)
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	user, err := h.users.GetUser(r.Context(), code)
	if errors.Is(err, models.ErrNotFound) {
		middleware.WriteError(w, models.ErrUnauthenticated.WithMessage("unknown login code"))
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	principal := models.Principal{UID: user.ID, Role: user.Role}
	if user.TeamID != nil {
		principal.TeamID = *user.TeamID
	}

	token, expiresAt, err := auth.IssueToken(principal, h.cfg.TokenSecret, h.cfg.TokenTTL, time.Now())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: principal,
	})
}

// Me handles GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		middleware.WriteError(w, models.ErrUnauthenticated)
		return
	}

	user, err := h.users.GetUser(r.Context(), principal.UID)
	if errors.Is(err, models.ErrNotFound) {
		// Token outlived the user (full reset)
		middleware.WriteError(w, models.ErrUnknownVoter)
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		Principal:  principal,
		Name:       user.Name,
		HasVotedP1: user.HasVotedP1,
		HasVotedP2: user.HasVotedP2,
	})
}
