// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package api exposes the auth engine over HTTP.
//
// Requests carry form-encoded fields and the session_id cookie; responses
// are JSON. Failure bodies never say which check failed.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/holomush/holoauth/internal/auth"
)

// SessionCookie carries the session token between requests.
const SessionCookie = "session_id"

// AuthService is the subset of auth.Service the handlers call.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	ValidateLogin(ctx context.Context, email, password string) (bool, error)
	CreateSession(ctx context.Context, email string) (string, error)
	GetUserBySession(ctx context.Context, token string) (*auth.User, error)
	DestroySession(ctx context.Context, userID ulid.ULID) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
}

var _ AuthService = (*auth.Service)(nil)

// RequestObserver counts HTTP responses by route pattern.
type RequestObserver interface {
	ObserveRequest(route string, status int)
}

// NewRouter mounts the auth routes. metrics may be nil.
func NewRouter(svc AuthService, logger *slog.Logger, metrics RequestObserver) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{auth: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(logger))
	if metrics != nil {
		r.Use(Metrics(metrics))
	}
	r.Use(middleware.Recoverer, middleware.StripSlashes)

	r.Get("/", h.Index)
	r.Post("/users", h.Register)
	r.Post("/sessions", h.Login)
	r.Delete("/sessions", h.Logout)
	r.Get("/profile", h.Profile)
	r.Post("/reset_password", h.RequestReset)
	r.Put("/reset_password", h.UpdatePassword)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// NewHTTPServer wraps handler in an http.Server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
