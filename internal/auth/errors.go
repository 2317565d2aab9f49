// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import "errors"

// Store-level sentinels. UserStore implementations wrap these with oops
// context; callers match them with errors.Is.
var (
	// ErrNotFound is returned when no user matches a lookup or update.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery is returned for malformed lookup criteria or an empty update.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownField is returned when an update names a field that is not updatable.
	ErrUnknownField = errors.New("unknown field")

	// ErrDuplicateEmail is returned when a store rejects a second user with the same email.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// Engine-level sentinels returned by Service.
var (
	// ErrAlreadyRegistered is returned by Register when the email is taken.
	ErrAlreadyRegistered = errors.New("email already registered")

	// ErrUserNotFound is returned by RequestPasswordReset for an unknown email.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidResetToken is returned by UpdatePassword when no user holds the token.
	ErrInvalidResetToken = errors.New("invalid reset token")
)
