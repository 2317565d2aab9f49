// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxEmailLength is the longest email address accepted at registration.
const MaxEmailLength = 254

// User is a registered principal.
//
// SessionID and ResetToken are empty when no session is active and no reset
// is outstanding, respectively.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	SessionID    string
	ResetToken   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSession reports whether the user currently holds a session token.
func (u *User) HasSession() bool {
	return u.SessionID != ""
}

// HasPendingReset reports whether a password reset is outstanding.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != ""
}

// Clone returns a copy of the user that shares no state with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// ValidateEmail checks the registration rules for an email address.
// Emails are exact string keys: no case folding or trimming is applied.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	return nil
}
