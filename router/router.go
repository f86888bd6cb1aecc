// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/cliparse"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/db"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/event"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/handlers"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/ledger"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/middleware"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

// Services are the domain services behind the routes. main keeps a handle
// on Events to run the auto-advance loop.
type Services struct {
	Events *event.Service
	Votes  *ledger.Service
}

// NewServices builds the services over store. Metrics are registered on
// reg once; a nil reg disables them.
func NewServices(store *db.Store, logger *slog.Logger, reg prometheus.Registerer) Services {
	return Services{
		Events: event.NewService(event.Config{
			Store:        store,
			Logger:       logger,
			PromRegistry: reg,
		}),
		Votes: ledger.NewService(ledger.Config{
			Store:        store,
			Logger:       logger,
			PromRegistry: reg,
		}),
	}
}

func NewRouter(store *db.Store, cfg cliparse.Config, svc Services, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(store, cfg)
	votingHandler := handlers.NewVotingHandler(svc.Votes)
	resultsHandler := handlers.NewResultsHandler(svc.Events)
	adminHandler := handlers.NewAdminHandler(svc.Events)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(cfg.TokenSecret, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole(h, models.RoleAdmin))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Login
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /me", authed(authHandler.Me))

	// Public reads (any authenticated role)
	mux.HandleFunc("GET /event", authed(resultsHandler.GetEvent))
	mux.HandleFunc("GET /teams", authed(resultsHandler.ListTeams))
	mux.HandleFunc("GET /results", authed(resultsHandler.GetResults))

	// Voting; role and phase are checked by the ledger
	mux.HandleFunc("POST /votes", authed(votingHandler.SubmitVote))

	// Admin
	mux.HandleFunc("POST /admin/event/status", admin(adminHandler.UpdateStatus))
	mux.HandleFunc("PATCH /admin/event/config", admin(adminHandler.UpdateConfig))
	mux.HandleFunc("POST /admin/phase1/finalize", admin(adminHandler.FinalizePhase1))
	mux.HandleFunc("POST /admin/phase1/resolve", admin(adminHandler.ResolvePhase1))
	mux.HandleFunc("POST /admin/final/resolve", admin(adminHandler.ResolveFinal))
	mux.HandleFunc("POST /admin/reset/votes", admin(adminHandler.ResetVotes))
	mux.HandleFunc("POST /admin/reset/phase2", admin(adminHandler.ResetPhase2))
	mux.HandleFunc("POST /admin/reset/all", admin(adminHandler.ResetAll))
	mux.HandleFunc("PATCH /admin/teams/{id}", admin(adminHandler.SetTeamHidden))
	mux.HandleFunc("GET /admin/results", admin(adminHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hackvote API v1"))
	})

	return mux
}
