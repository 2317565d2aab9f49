// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package memory provides an in-process auth.UserStore for tests and
// single-node development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/holoauth/internal/auth"
)

// UserStore keeps users in a map guarded by a RWMutex.
type UserStore struct {
	mu      sync.RWMutex
	users   map[ulid.ULID]*auth.User
	byEmail map[string]ulid.ULID
	now     func() time.Time
}

// Compile-time interface checks.
var (
	_ auth.UserStore = (*UserStore)(nil)
	_ auth.Pinger    = (*UserStore)(nil)
)

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[ulid.ULID]*auth.User),
		byEmail: make(map[string]ulid.ULID),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create implements auth.UserStore.
func (s *UserStore) Create(_ context.Context, email, passwordHash string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return nil, oops.Code("USER_DUPLICATE_EMAIL").
			With("email", email).
			Wrap(auth.ErrDuplicateEmail)
	}

	now := s.now()
	u := &auth.User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u.Clone(), nil
}

// FindOne implements auth.UserStore.
func (s *UserStore) FindOne(_ context.Context, criteria auth.Criteria) (*auth.User, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Narrow by the indexed key when possible.
	if email, ok := criteria[auth.FieldEmail]; ok {
		id, found := s.byEmail[email]
		if found && matches(s.users[id], criteria) {
			return s.users[id].Clone(), nil
		}
		return nil, notFound(criteria)
	}
	if raw, ok := criteria[auth.FieldID]; ok {
		id := ulid.MustParse(raw)
		if u, found := s.users[id]; found && matches(u, criteria) {
			return u.Clone(), nil
		}
		return nil, notFound(criteria)
	}

	for _, u := range s.users {
		if matches(u, criteria) {
			return u.Clone(), nil
		}
	}
	return nil, notFound(criteria)
}

// Update implements auth.UserStore. Validation and mutation happen under
// the same write lock, so concurrent readers never see a partial update.
func (s *UserStore) Update(_ context.Context, id ulid.ULID, updates ...auth.FieldUpdate) error {
	if err := auth.ValidateUpdates(updates); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return oops.Code("USER_NOT_FOUND").
			With("user_id", id.String()).
			Wrap(auth.ErrNotFound)
	}

	for _, upd := range updates {
		switch upd.Field {
		case auth.FieldPasswordHash:
			u.PasswordHash = upd.Value
		case auth.FieldSessionID:
			u.SessionID = upd.Value
		case auth.FieldResetToken:
			u.ResetToken = upd.Value
		}
	}
	u.UpdatedAt = s.now()
	return nil
}

// Ping implements auth.Pinger. The memory store is always ready.
func (s *UserStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func matches(u *auth.User, criteria auth.Criteria) bool {
	for field, want := range criteria {
		// Empty values model SQL NULL and never match.
		if want == "" {
			return false
		}
		var got string
		switch field {
		case auth.FieldID:
			id, err := ulid.Parse(want)
			if err != nil || id != u.ID {
				return false
			}
			continue
		case auth.FieldEmail:
			got = u.Email
		case auth.FieldSessionID:
			got = u.SessionID
		case auth.FieldResetToken:
			got = u.ResetToken
		default:
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}

func notFound(criteria auth.Criteria) error {
	return oops.Code("USER_NOT_FOUND").
		With("criteria", criteria.Fields()).
		Wrap(auth.ErrNotFound)
}
