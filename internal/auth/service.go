// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Service implements registration, login validation, session lifecycle and
// password reset on top of a UserStore.
type Service struct {
	store    UserStore
	hasher   PasswordHasher
	tokens   TokenSource
	notifier ResetNotifier
	observer Observer
	logger   *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service) error

// WithLogger sets the logger used for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			return oops.Code("AUTH_INVALID_CONFIG").Errorf("logger is required")
		}
		s.logger = logger
		return nil
	}
}

// WithTokenSource replaces the default UUID token source.
func WithTokenSource(tokens TokenSource) Option {
	return func(s *Service) error {
		if tokens == nil {
			return oops.Code("AUTH_INVALID_CONFIG").Errorf("token source is required")
		}
		s.tokens = tokens
		return nil
	}
}

// WithResetNotifier publishes every issued reset token to notifier.
func WithResetNotifier(notifier ResetNotifier) Option {
	return func(s *Service) error {
		s.notifier = notifier
		return nil
	}
}

// WithObserver reports operation outcomes to observer.
func WithObserver(observer Observer) Option {
	return func(s *Service) error {
		if observer == nil {
			return oops.Code("AUTH_INVALID_CONFIG").Errorf("observer is required")
		}
		s.observer = observer
		return nil
	}
}

// NewService creates a new Service.
func NewService(store UserStore, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}

	s := &Service{
		store:    store,
		hasher:   hasher,
		tokens:   UUIDTokenSource{},
		observer: nopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// dummyPasswordHash is verified when a user doesn't exist so login timing
// does not reveal which emails are registered. It never matches a password.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a user with a salted hash of password.
// Returns an error wrapping ErrAlreadyRegistered if the email is taken;
// in that case nothing is written.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		s.observer.ObserveOperation(OpRegister, OutcomeRejected)
		return nil, err
	}

	_, err := s.store.FindOne(ctx, ByEmail(email))
	switch {
	case err == nil:
		s.observer.ObserveOperation(OpRegister, OutcomeRejected)
		return nil, oops.Code("AUTH_ALREADY_REGISTERED").
			With("email", email).
			Wrap(ErrAlreadyRegistered)
	case !errors.Is(err, ErrNotFound):
		s.observer.ObserveOperation(OpRegister, OutcomeError)
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "find user by email").
			With("email", email).
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			s.observer.ObserveOperation(OpRegister, OutcomeRejected)
			return nil, err
		}
		s.observer.ObserveOperation(OpRegister, OutcomeError)
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := s.store.Create(ctx, email, hash)
	if err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, ErrDuplicateEmail) {
			s.observer.ObserveOperation(OpRegister, OutcomeRejected)
			return nil, oops.Code("AUTH_ALREADY_REGISTERED").
				With("email", email).
				Wrap(ErrAlreadyRegistered)
		}
		s.observer.ObserveOperation(OpRegister, OutcomeError)
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			With("email", email).
			Wrap(err)
	}

	s.logger.DebugContext(ctx, "user registered", "user_id", user.ID.String())
	s.observer.ObserveOperation(OpRegister, OutcomeSuccess)
	return user, nil
}

// ValidateLogin reports whether password matches the stored hash for email.
// An unknown email yields (false, nil). Errors are returned only for storage
// faults or a corrupt stored hash.
func (s *Service) ValidateLogin(ctx context.Context, email, password string) (bool, error) {
	user, err := s.store.FindOne(ctx, ByEmail(email))

	targetHash := dummyPasswordHash
	exists := false
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.observer.ObserveOperation(OpValidateLogin, OutcomeError)
			return false, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "find user by email").
				Wrap(err)
		}
	} else {
		targetHash = user.PasswordHash
		exists = true
	}

	// Always verify so the unknown-email path costs the same as a mismatch.
	valid, err := s.hasher.Verify(password, targetHash)
	if err != nil {
		if !exists {
			s.observer.ObserveOperation(OpValidateLogin, OutcomeRejected)
			return false, nil
		}
		s.observer.ObserveOperation(OpValidateLogin, OutcomeError)
		return false, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if !exists || !valid {
		s.observer.ObserveOperation(OpValidateLogin, OutcomeRejected)
		return false, nil
	}

	s.observer.ObserveOperation(OpValidateLogin, OutcomeSuccess)
	return true, nil
}
