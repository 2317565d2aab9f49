// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Field names a persisted User attribute.
type Field string

// User fields as they appear in storage.
const (
	FieldID           Field = "id"
	FieldEmail        Field = "email"
	FieldPasswordHash Field = "hashed_password"
	FieldSessionID    Field = "session_id"
	FieldResetToken   Field = "reset_token"
)

// lookupFields are the indexed fields FindOne accepts.
var lookupFields = map[Field]bool{
	FieldID:         true,
	FieldEmail:      true,
	FieldSessionID:  true,
	FieldResetToken: true,
}

// updatableFields are the only fields Update may assign.
var updatableFields = map[Field]bool{
	FieldPasswordHash: true,
	FieldSessionID:    true,
	FieldResetToken:   true,
}

// Criteria is an exact-match filter; every entry must match.
type Criteria map[Field]string

// ByID matches the user with the given id.
func ByID(id ulid.ULID) Criteria {
	return Criteria{FieldID: id.String()}
}

// ByEmail matches the user with the given email.
func ByEmail(email string) Criteria {
	return Criteria{FieldEmail: email}
}

// BySessionID matches the user holding the given session token.
func BySessionID(token string) Criteria {
	return Criteria{FieldSessionID: token}
}

// ByResetToken matches the user holding the given reset token.
func ByResetToken(token string) Criteria {
	return Criteria{FieldResetToken: token}
}

// Fields returns the criteria fields in a stable order.
func (c Criteria) Fields() []Field {
	fields := make([]Field, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// Strings returns the criteria keyed by plain field name, for error context.
func (c Criteria) Strings() map[string]string {
	out := make(map[string]string, len(c))
	for f, v := range c {
		out[string(f)] = v
	}
	return out
}

// Validate returns an error wrapping ErrInvalidQuery if the criteria are
// empty, name a non-indexed field, or carry an id that is not a ULID.
func (c Criteria) Validate() error {
	if len(c) == 0 {
		return oops.Code("USER_INVALID_QUERY").Wrap(ErrInvalidQuery)
	}
	for _, f := range c.Fields() {
		if !lookupFields[f] {
			return oops.Code("USER_INVALID_QUERY").
				With("field", string(f)).
				Wrap(ErrInvalidQuery)
		}
	}
	if raw, ok := c[FieldID]; ok {
		if _, err := ulid.Parse(raw); err != nil {
			return oops.Code("USER_INVALID_QUERY").
				With("field", string(FieldID)).
				With("value", raw).
				Wrap(ErrInvalidQuery)
		}
	}
	return nil
}

// FieldUpdate assigns Value to Field. An empty Value clears the field.
type FieldUpdate struct {
	Field Field
	Value string
}

// SetPasswordHash replaces the stored password hash.
func SetPasswordHash(hash string) FieldUpdate {
	return FieldUpdate{Field: FieldPasswordHash, Value: hash}
}

// SetSessionID stores a session token.
func SetSessionID(token string) FieldUpdate {
	return FieldUpdate{Field: FieldSessionID, Value: token}
}

// ClearSessionID removes the session token.
func ClearSessionID() FieldUpdate {
	return FieldUpdate{Field: FieldSessionID}
}

// SetResetToken stores a password reset token.
func SetResetToken(token string) FieldUpdate {
	return FieldUpdate{Field: FieldResetToken, Value: token}
}

// ClearResetToken removes the password reset token.
func ClearResetToken() FieldUpdate {
	return FieldUpdate{Field: FieldResetToken}
}

// ValidateUpdates checks every update before any is applied.
// Stores call it first so a bad field never leaves a partial write behind.
func ValidateUpdates(updates []FieldUpdate) error {
	if len(updates) == 0 {
		return oops.Code("USER_INVALID_QUERY").
			Wrapf(ErrInvalidQuery, "no fields to update")
	}
	for _, u := range updates {
		if !updatableFields[u.Field] {
			return oops.Code("USER_UNKNOWN_FIELD").
				With("field", string(u.Field)).
				Wrap(ErrUnknownField)
		}
		if u.Field == FieldPasswordHash && u.Value == "" {
			return oops.Code("USER_INVALID_QUERY").
				With("field", string(u.Field)).
				Wrapf(ErrInvalidQuery, "password hash cannot be cleared")
		}
	}
	return nil
}

// UserStore persists users.
type UserStore interface {
	// Create inserts a user with a fresh id and no session or reset token.
	// Returns an error wrapping ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, email, passwordHash string) (*User, error)

	// FindOne returns the single user matching all criteria.
	// Returns ErrNotFound when nothing matches and ErrInvalidQuery for
	// malformed criteria. Other errors are storage faults.
	FindOne(ctx context.Context, criteria Criteria) (*User, error)

	// Update applies all updates to the user with id atomically.
	// Returns ErrNotFound for an unknown id and ErrUnknownField, with
	// nothing written, if any update names a field that is not updatable.
	Update(ctx context.Context, id ulid.ULID, updates ...FieldUpdate) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
