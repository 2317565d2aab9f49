// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// TokenSource produces opaque session and reset tokens.
type TokenSource interface {
	NewToken() (string, error)
}

// UUIDTokenSource issues random (version 4) UUIDs in canonical string form.
type UUIDTokenSource struct{}

// NewToken returns a fresh random UUID string.
func (UUIDTokenSource) NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "uuid.NewRandom").
			Wrap(err)
	}
	return id.String(), nil
}
