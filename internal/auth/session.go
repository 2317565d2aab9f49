// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// CreateSession issues a new session token for email, replacing any session
// the user already had. An unknown email yields an empty token and no error;
// callers must treat the empty token as failure.
func (s *Service) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.store.FindOne(ctx, ByEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpCreateSession, OutcomeRejected)
			return "", nil
		}
		s.observer.ObserveOperation(OpCreateSession, OutcomeError)
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "find user by email").
			Wrap(err)
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		s.observer.ObserveOperation(OpCreateSession, OutcomeError)
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}
	if token == "" {
		s.observer.ObserveOperation(OpCreateSession, OutcomeError)
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Errorf("token source returned an empty token")
	}

	if err := s.store.Update(ctx, user.ID, SetSessionID(token)); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpCreateSession, OutcomeRejected)
			return "", nil
		}
		s.observer.ObserveOperation(OpCreateSession, OutcomeError)
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "store session token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.observer.ObserveOperation(OpCreateSession, OutcomeSuccess)
	return token, nil
}

// GetUserBySession returns the user holding token, or nil if the token is
// empty or unknown. The store is not consulted for an empty token.
func (s *Service) GetUserBySession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		s.observer.ObserveOperation(OpGetUserBySession, OutcomeRejected)
		return nil, nil
	}

	user, err := s.store.FindOne(ctx, BySessionID(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpGetUserBySession, OutcomeRejected)
			return nil, nil
		}
		s.observer.ObserveOperation(OpGetUserBySession, OutcomeError)
		return nil, oops.Code("AUTH_SESSION_LOOKUP_FAILED").
			With("operation", "find user by session").
			Wrap(err)
	}

	s.observer.ObserveOperation(OpGetUserBySession, OutcomeSuccess)
	return user, nil
}

// DestroySession clears the session token of the user with userID.
// It is idempotent: an unknown user or an absent session is not an error.
func (s *Service) DestroySession(ctx context.Context, userID ulid.ULID) error {
	user, err := s.store.FindOne(ctx, ByID(userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpDestroySession, OutcomeSuccess)
			return nil
		}
		s.observer.ObserveOperation(OpDestroySession, OutcomeError)
		return oops.Code("AUTH_SESSION_DESTROY_FAILED").
			With("operation", "find user by id").
			With("user_id", userID.String()).
			Wrap(err)
	}

	if !user.HasSession() {
		s.observer.ObserveOperation(OpDestroySession, OutcomeSuccess)
		return nil
	}

	if err := s.store.Update(ctx, user.ID, ClearSessionID()); err != nil && !errors.Is(err, ErrNotFound) {
		s.observer.ObserveOperation(OpDestroySession, OutcomeError)
		return oops.Code("AUTH_SESSION_DESTROY_FAILED").
			With("operation", "clear session token").
			With("user_id", userID.String()).
			Wrap(err)
	}

	s.observer.ObserveOperation(OpDestroySession, OutcomeSuccess)
	return nil
}
