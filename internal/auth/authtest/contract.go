// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package authtest provides shared test helpers for auth.UserStore
// implementations.
package authtest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holoauth/internal/auth"
)

// NewStoreFunc returns an empty store. Each call must return an isolated store.
type NewStoreFunc func(t *testing.T) auth.UserStore

// RunUserStoreContract runs the behaviour every UserStore must share.
func RunUserStoreContract(t *testing.T, newStore NewStoreFunc) {
	t.Helper()
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		store := newStore(t)

		u, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)
		assert.NotEqual(t, ulid.ULID{}, u.ID)
		assert.Equal(t, "a@x.com", u.Email)
		assert.Equal(t, "hash-1", u.PasswordHash)
		assert.Empty(t, u.SessionID)
		assert.Empty(t, u.ResetToken)
		assert.False(t, u.CreatedAt.IsZero())
		assert.False(t, u.UpdatedAt.IsZero())
	})

	t.Run("find by email and id", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)

		byEmail, err := store.FindOne(ctx, auth.ByEmail("a@x.com"))
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)

		byID, err := store.FindOne(ctx, auth.ByID(created.ID))
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", byID.Email)
		assert.Equal(t, "hash-1", byID.PasswordHash)
	})

	t.Run("find with several criteria requires all to match", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)
		require.NoError(t, store.Update(ctx, created.ID, auth.SetSessionID("s-1")))

		u, err := store.FindOne(ctx, auth.Criteria{auth.FieldEmail: "a@x.com", auth.FieldSessionID: "s-1"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)

		_, err = store.FindOne(ctx, auth.Criteria{auth.FieldEmail: "a@x.com", auth.FieldSessionID: "s-2"})
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("duplicate email is rejected and original kept", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)

		_, err = store.Create(ctx, "a@x.com", "hash-2")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)

		u, err := store.FindOne(ctx, auth.ByEmail("a@x.com"))
		require.NoError(t, err)
		assert.Equal(t, "hash-1", u.PasswordHash)
	})

	t.Run("concurrent creates for one email yield a single user", func(t *testing.T) {
		store := newStore(t)

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			dupes     int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Create(ctx, "race@x.com", "hash")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, auth.ErrDuplicateEmail):
					dupes++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, dupes)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.FindOne(ctx, auth.ByEmail("nobody@x.com"))
		assert.ErrorIs(t, err, auth.ErrNotFound)

		_, err = store.FindOne(ctx, auth.ByID(ulid.Make()))
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("empty token never matches", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)

		_, err = store.FindOne(ctx, auth.BySessionID(""))
		assert.ErrorIs(t, err, auth.ErrNotFound)

		_, err = store.FindOne(ctx, auth.ByResetToken(""))
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("invalid criteria", func(t *testing.T) {
		store := newStore(t)

		tests := []struct {
			name     string
			criteria auth.Criteria
		}{
			{name: "nil", criteria: nil},
			{name: "empty", criteria: auth.Criteria{}},
			{name: "non-indexed field", criteria: auth.Criteria{auth.FieldPasswordHash: "h"}},
			{name: "unknown field", criteria: auth.Criteria{"nickname": "bob"}},
			{name: "malformed id", criteria: auth.Criteria{auth.FieldID: "not-a-ulid"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := store.FindOne(ctx, tt.criteria)
				assert.ErrorIs(t, err, auth.ErrInvalidQuery)
			})
		}
	})

	t.Run("update sets and clears session", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)

		require.NoError(t, store.Update(ctx, created.ID, auth.SetSessionID("s-1")))
		u, err := store.FindOne(ctx, auth.BySessionID("s-1"))
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)
		assert.True(t, u.HasSession())

		require.NoError(t, store.Update(ctx, created.ID, auth.ClearSessionID()))
		_, err = store.FindOne(ctx, auth.BySessionID("s-1"))
		assert.ErrorIs(t, err, auth.ErrNotFound)

		u, err = store.FindOne(ctx, auth.ByID(created.ID))
		require.NoError(t, err)
		assert.Empty(t, u.SessionID)
	})

	t.Run("update applies several fields at once", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)
		require.NoError(t, store.Update(ctx, created.ID, auth.SetResetToken("r-1")))

		require.NoError(t, store.Update(ctx, created.ID, auth.SetPasswordHash("hash-2"), auth.ClearResetToken()))

		u, err := store.FindOne(ctx, auth.ByID(created.ID))
		require.NoError(t, err)
		assert.Equal(t, "hash-2", u.PasswordHash)
		assert.Empty(t, u.ResetToken)

		_, err = store.FindOne(ctx, auth.ByResetToken("r-1"))
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("update with unknown field mutates nothing", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)

		err = store.Update(ctx, created.ID,
			auth.SetSessionID("s-1"),
			auth.FieldUpdate{Field: auth.FieldEmail, Value: "b@x.com"},
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUnknownField)

		u, err := store.FindOne(ctx, auth.ByID(created.ID))
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", u.Email)
		assert.Empty(t, u.SessionID)
	})

	t.Run("update with no fields is invalid", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)

		err = store.Update(ctx, created.ID)
		assert.ErrorIs(t, err, auth.ErrInvalidQuery)
	})

	t.Run("update on missing id is not found", func(t *testing.T) {
		store := newStore(t)

		err := store.Update(ctx, ulid.Make(), auth.SetSessionID("s-1"))
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, "a@x.com", "hash-1")
		require.NoError(t, err)

		created.PasswordHash = "tampered"
		u, err := store.FindOne(ctx, auth.ByID(created.ID))
		require.NoError(t, err)
		assert.Equal(t, "hash-1", u.PasswordHash)
	})
}
