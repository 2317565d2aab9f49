// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth provides the holoauth authentication engine.
//
// # Store contract
//
// UserStore is the persistence boundary. Lookups take exact-match Criteria
// (see ByEmail, BySessionID, ByResetToken, ByID) and updates take typed
// FieldUpdate values (SetSessionID, ClearResetToken, ...). Only
// hashed_password, session_id and reset_token are updatable; any other
// field is rejected with ErrUnknownField before anything is written.
//
// # Service
//
// Service coordinates registration, login validation, the session lifecycle
// and the password reset lifecycle. Store "not found" results never leave
// the Service raw: they become false, an empty token, a nil user, or one of
// ErrAlreadyRegistered, ErrUserNotFound and ErrInvalidResetToken. Every other
// store failure is returned as a coded oops error so callers can tell
// invalid input apart from an unavailable store.
//
// Sessions do not expire; a session ends only at logout or when a new login
// replaces it.
package auth
