// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements auth.UserStore on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/holoauth/internal/auth"
)

// DB is the subset of pgxpool.Pool used by UserStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const selectColumns = `id, email, hashed_password, session_id, reset_token, created_at, updated_at`

// UserStore implements auth.UserStore using PostgreSQL.
type UserStore struct {
	db DB
}

// Compile-time interface checks.
var (
	_ auth.UserStore = (*UserStore)(nil)
	_ auth.Pinger    = (*UserStore)(nil)
)

// NewUserStore creates a new UserStore. The caller owns db.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (*auth.User, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &auth.User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID.String(), u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, oops.Code("USER_DUPLICATE_EMAIL").
				With("email", email).
				Wrap(auth.ErrDuplicateEmail)
		}
		return nil, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", email).
			Wrap(err)
	}
	return u, nil
}

// FindOne returns the user matching every criterion.
func (s *UserStore) FindOne(ctx context.Context, criteria auth.Criteria) (*auth.User, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	fields := criteria.Fields()
	where := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		value := criteria[f]
		if value == "" {
			// Empty tokens are stored as NULL and match nothing.
			return nil, notFound(criteria)
		}
		if f == auth.FieldID {
			value = ulid.MustParse(value).String()
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", f, len(args)))
	}

	row := s.db.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM users WHERE `+strings.Join(where, " AND ")+` LIMIT 1`,
		args...)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(criteria)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "find user").
			With("criteria", fields).
			Wrap(err)
	}
	return u, nil
}

// Update assigns the given fields in a single statement.
func (s *UserStore) Update(ctx context.Context, id ulid.ULID, updates ...auth.FieldUpdate) error {
	if err := auth.ValidateUpdates(updates); err != nil {
		return err
	}

	args := []any{id.String()}
	set := make([]string, 0, len(updates)+1)
	for _, u := range updates {
		args = append(args, nullable(u.Value))
		set = append(set, fmt.Sprintf("%s = $%d", u.Field, len(args)))
	}
	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))

	result, err := s.db.Exec(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = $1`,
		args...)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("user_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("user_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Ping checks database connectivity.
func (s *UserStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return oops.Code("USER_STORE_UNAVAILABLE").Wrap(err)
	}
	return nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr      string
		sessionID  *string
		resetToken *string
		u          auth.User
	)
	if err := row.Scan(&idStr, &u.Email, &u.PasswordHash, &sessionID, &resetToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	u.ID = id
	if sessionID != nil {
		u.SessionID = *sessionID
	}
	if resetToken != nil {
		u.ResetToken = *resetToken
	}
	return &u, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func notFound(criteria auth.Criteria) error {
	return oops.Code("USER_NOT_FOUND").
		With("criteria", criteria.Fields()).
		Wrap(auth.ErrNotFound)
}
