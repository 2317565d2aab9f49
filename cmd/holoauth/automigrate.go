// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
)

// AutoMigrator is the subset of store.Migrator used at serve startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// runAutoMigration brings the schema at databaseURL up to date. A close
// failure is logged and does not fail startup.
func runAutoMigration(databaseURL string, factory func(string) (AutoMigrator, error), logger *slog.Logger) error {
	m, err := factory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").
			With("operation", "open migrator").
			Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if err := m.Up(); err != nil {
		return oops.Code("AUTO_MIGRATION_FAILED").
			With("operation", "apply migrations").
			Wrap(err)
	}
	logger.Info("database migrations applied")
	return nil
}
