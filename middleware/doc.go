// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, remote, status and duration_ms once the handler returns.

# Authentication

RequireAuth reads "Authorization: Bearer <token>", verifies it with
auth.VerifyToken and stores the principal on the request context.
RequireRole then restricts a route to the listed roles:

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(secret, middleware.RequireRole(h, models.RoleAdmin))
	}

# Errors

WriteError maps a *models.Error to its status:

	unauthenticated  401
	forbidden        403
	validation       400
	not_found        404
	conflict         409
	anything else    500 "Internal error"

The body is models.ErrorResponse with the stable error code.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
