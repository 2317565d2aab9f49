// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package sqlite implements auth.UserStore on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/holomush/holoauth/internal/auth"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const selectColumns = `id, email, hashed_password, session_id, reset_token, created_at, updated_at`

// UserStore implements auth.UserStore over database/sql.
type UserStore struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ auth.UserStore = (*UserStore)(nil)
	_ auth.Pinger    = (*UserStore)(nil)
)

// Open opens (creating if needed) the database at path and applies the schema.
// MemoryPath gives a database that lives as long as the store.
func Open(ctx context.Context, path string) (*UserStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, oops.Code("SQLITE_CONFIG_INVALID").Errorf("storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == MemoryPath {
		dsn = "file::memory:?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, oops.Code("SQLITE_SCHEMA_FAILED").With("path", path).Wrap(err)
	}
	return New(db), nil
}

// New wraps an already-initialised database.
func New(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Close releases the database.
func (s *UserStore) Close() error {
	if err := s.db.Close(); err != nil {
		return oops.Code("SQLITE_CLOSE_FAILED").Wrap(err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *UserStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return oops.Code("USER_STORE_UNAVAILABLE").Wrap(err)
	}
	return nil
}

// Create inserts a new user.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (*auth.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	u := &auth.User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, hashed_password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID.String(), u.Email, u.PasswordHash, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
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
			return nil, notFound(criteria)
		}
		if f == auth.FieldID {
			value = ulid.MustParse(value).String()
		}
		where = append(where, string(f)+" = ?")
		args = append(args, value)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM users WHERE `+strings.Join(where, " AND ")+` LIMIT 1`,
		args...)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
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

	set := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+2)
	for _, u := range updates {
		set = append(set, string(u.Field)+" = ?")
		args = append(args, sql.NullString{String: u.Value, Valid: u.Value != ""})
	}
	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC().UnixMilli(), id.String())

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = ?`,
		args...)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("user_id", id.String()).
			Wrap(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "rows affected").
			With("user_id", id.String()).
			Wrap(err)
	}
	if n == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("user_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var (
		idStr                 string
		sessionID, resetToken sql.NullString
		createdAt, updatedAt  int64
		u                     auth.User
	)
	if err := row.Scan(&idStr, &u.Email, &u.PasswordHash, &sessionID, &resetToken, &createdAt, &updatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	u.ID = id
	u.SessionID = sessionID.String
	u.ResetToken = resetToken.String
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	u.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &u, nil
}

// isUniqueViolation reports whether err is an SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func notFound(criteria auth.Criteria) error {
	return oops.Code("USER_NOT_FOUND").
		With("criteria", criteria.Fields()).
		Wrap(auth.ErrNotFound)
}
