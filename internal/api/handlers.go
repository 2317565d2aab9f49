// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/holomush/holoauth/internal/auth"
	"github.com/holomush/holoauth/pkg/errutil"
)

// Handler implements the HTTP endpoints.
type Handler struct {
	auth   AuthService
	logger *slog.Logger
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	errutil.LogErrorContext(r.Context(), h.logger, msg, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// isInvalidInput reports whether err rejects the request payload rather
// than signalling a fault.
func isInvalidInput(err error) bool {
	return errors.Is(err, auth.ErrEmptyPassword) || errutil.Code(err) == "AUTH_INVALID_EMAIL"
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "Bienvenue")
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	_, err := h.auth.Register(r.Context(), email, password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "user created"})
	case errors.Is(err, auth.ErrAlreadyRegistered):
		writeMessage(w, http.StatusBadRequest, "email already registered")
	case isInvalidInput(err):
		writeMessage(w, http.StatusBadRequest, "invalid email or password")
	default:
		h.internalError(w, r, "register failed", err)
	}
}

// Login handles POST /sessions.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ok, err := h.auth.ValidateLogin(r.Context(), email, password)
	if err != nil {
		h.internalError(w, r, "login validation failed", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := h.auth.CreateSession(r.Context(), email)
	if err != nil {
		h.internalError(w, r, "create session failed", err)
		return
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "logged in"})
}

// sessionUser resolves the session cookie. It writes the response and
// returns nil when the request has no valid session.
func (h *Handler) sessionUser(w http.ResponseWriter, r *http.Request) *auth.User {
	var token string
	if c, err := r.Cookie(SessionCookie); err == nil {
		token = c.Value
	}

	user, err := h.auth.GetUserBySession(r.Context(), token)
	if err != nil {
		h.internalError(w, r, "session lookup failed", err)
		return nil
	}
	if user == nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil
	}
	return user
}

// Profile handles GET /profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(w, r)
	if user == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": user.Email})
}

// Logout handles DELETE /sessions.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(w, r)
	if user == nil {
		return
	}
	if err := h.auth.DestroySession(r.Context(), user.ID); err != nil {
		h.internalError(w, r, "destroy session failed", err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}

// RequestReset handles POST /reset_password.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	token, err := h.auth.RequestPasswordReset(r.Context(), email)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"email": email, "reset_token": token})
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		h.internalError(w, r, "reset request failed", err)
	}
}

// UpdatePassword handles PUT /reset_password. The email field is echoed
// back; the reset token alone selects the account.
// Every rejected update, invalid input included, answers 403.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	token := r.FormValue("reset_token")
	password := r.FormValue("new_password")

	err := h.auth.UpdatePassword(r.Context(), token, password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "Password updated"})
	case errors.Is(err, auth.ErrInvalidResetToken), isInvalidInput(err):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		h.internalError(w, r, "password update failed", err)
	}
}
