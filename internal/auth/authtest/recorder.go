// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package authtest

import (
	"context"
	"sync"

	"github.com/holomush/holoauth/internal/auth"
)

// RecordingObserver stores every reported operation outcome.
type RecordingObserver struct {
	mu     sync.Mutex
	events []string
}

// ObserveOperation implements auth.Observer.
func (o *RecordingObserver) ObserveOperation(operation, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, operation+":"+outcome)
}

// Events returns the recorded "operation:outcome" pairs in order.
func (o *RecordingObserver) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}

// RecordingNotifier captures reset events and optionally fails.
type RecordingNotifier struct {
	Err error

	mu     sync.Mutex
	events []auth.PasswordResetRequested
}

// NotifyReset implements auth.ResetNotifier.
func (n *RecordingNotifier) NotifyReset(_ context.Context, event auth.PasswordResetRequested) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.Err
}

// Events returns the captured reset events.
func (n *RecordingNotifier) Events() []auth.PasswordResetRequested {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]auth.PasswordResetRequested(nil), n.events...)
}

// SequenceTokens returns the given tokens in order, then "" forever.
type SequenceTokens struct {
	mu     sync.Mutex
	Tokens []string
}

// NewToken implements auth.TokenSource.
func (s *SequenceTokens) NewToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Tokens) == 0 {
		return "", nil
	}
	t := s.Tokens[0]
	s.Tokens = s.Tokens[1:]
	return t, nil
}
