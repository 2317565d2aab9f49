// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// RequestPasswordReset stores a fresh reset token for email and returns it.
// Any previously issued reset token stops working. Returns an error wrapping
// ErrUserNotFound for an unknown email.
//
// If a ResetNotifier is configured the token is also published to it; a
// publish failure is logged and does not fail the request.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.store.FindOne(ctx, ByEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpRequestPasswordReset, OutcomeRejected)
			return "", oops.Code("AUTH_USER_NOT_FOUND").Wrap(ErrUserNotFound)
		}
		s.observer.ObserveOperation(OpRequestPasswordReset, OutcomeError)
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "find user by email").
			Wrap(err)
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		s.observer.ObserveOperation(OpRequestPasswordReset, OutcomeError)
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}
	if token == "" {
		s.observer.ObserveOperation(OpRequestPasswordReset, OutcomeError)
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Errorf("token source returned an empty token")
	}

	if err := s.store.Update(ctx, user.ID, SetResetToken(token)); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpRequestPasswordReset, OutcomeRejected)
			return "", oops.Code("AUTH_USER_NOT_FOUND").Wrap(ErrUserNotFound)
		}
		s.observer.ObserveOperation(OpRequestPasswordReset, OutcomeError)
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "store reset token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if s.notifier != nil {
		event := PasswordResetRequested{
			UserID:      user.ID,
			Email:       user.Email,
			ResetToken:  token,
			RequestedAt: time.Now().UTC(),
		}
		if err := s.notifier.NotifyReset(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "best-effort reset notification failed",
				"user_id", user.ID.String(),
				"operation", "notify_reset",
				"error", err.Error(),
			)
		}
	}

	s.observer.ObserveOperation(OpRequestPasswordReset, OutcomeSuccess)
	return token, nil
}

// UpdatePassword sets a new password for the user holding resetToken and
// consumes the token in the same store update. Returns an error wrapping
// ErrInvalidResetToken if no user holds the token.
func (s *Service) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		s.observer.ObserveOperation(OpUpdatePassword, OutcomeRejected)
		return oops.Code("AUTH_INVALID_RESET_TOKEN").Wrap(ErrInvalidResetToken)
	}

	user, err := s.store.FindOne(ctx, ByResetToken(resetToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpUpdatePassword, OutcomeRejected)
			return oops.Code("AUTH_INVALID_RESET_TOKEN").Wrap(ErrInvalidResetToken)
		}
		s.observer.ObserveOperation(OpUpdatePassword, OutcomeError)
		return oops.Code("AUTH_PASSWORD_UPDATE_FAILED").
			With("operation", "find user by reset token").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			s.observer.ObserveOperation(OpUpdatePassword, OutcomeRejected)
			return err
		}
		s.observer.ObserveOperation(OpUpdatePassword, OutcomeError)
		return oops.Code("AUTH_PASSWORD_UPDATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	// Hash and token change together so the token can't outlive the old password.
	if err := s.store.Update(ctx, user.ID, SetPasswordHash(hash), ClearResetToken()); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpUpdatePassword, OutcomeRejected)
			return oops.Code("AUTH_INVALID_RESET_TOKEN").Wrap(ErrInvalidResetToken)
		}
		s.observer.ObserveOperation(OpUpdatePassword, OutcomeError)
		return oops.Code("AUTH_PASSWORD_UPDATE_FAILED").
			With("operation", "update password").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.observer.ObserveOperation(OpUpdatePassword, OutcomeSuccess)
	return nil
}
