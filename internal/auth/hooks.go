// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// PasswordResetRequested is emitted after a reset token has been stored.
type PasswordResetRequested struct {
	UserID      ulid.ULID `json:"user_id"`
	Email       string    `json:"email"`
	ResetToken  string    `json:"reset_token"`
	RequestedAt time.Time `json:"requested_at"`
}

// ResetNotifier delivers reset tokens out of band (e.g. to a mailer queue).
type ResetNotifier interface {
	NotifyReset(ctx context.Context, event PasswordResetRequested) error
}

// Operation outcomes reported to an Observer.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Operation names reported to an Observer.
const (
	OpRegister             = "register"
	OpValidateLogin        = "validate_login"
	OpCreateSession        = "create_session"
	OpGetUserBySession     = "get_user_by_session"
	OpDestroySession       = "destroy_session"
	OpRequestPasswordReset = "request_password_reset"
	OpUpdatePassword       = "update_password"
)

// Observer receives one call per Service operation.
type Observer interface {
	ObserveOperation(operation, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string) {}
