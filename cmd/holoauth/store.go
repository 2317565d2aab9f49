// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/holomush/holoauth/internal/auth"
	"github.com/holomush/holoauth/internal/auth/memory"
	"github.com/holomush/holoauth/internal/auth/postgres"
	"github.com/holomush/holoauth/internal/auth/sqlite"
	"github.com/holomush/holoauth/internal/config"
	"github.com/holomush/holoauth/internal/store"
	"github.com/holomush/holoauth/internal/xdg"
)

// openStore opens the user store selected by cfg.Driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (auth.UserStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		retries := uint64(max(cfg.ConnectRetries, 0)) //nolint:gosec // clamped non-negative
		pool, err := store.Connect(ctx, cfg.DatabaseURL, retries)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserStore(pool), pool.Close, nil
	case config.DriverSQLite:
		if cfg.SQLitePath != sqlite.MemoryPath {
			if err := xdg.EnsureDir(filepath.Dir(cfg.SQLitePath)); err != nil {
				return nil, nil, err
			}
		}
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.DriverMemory:
		return memory.NewUserStore(), func() {}, nil
	default:
		return nil, nil, oops.Code("CONFIG_INVALID").
			With("field", "store.driver").
			Errorf("unknown store driver %q", cfg.Driver)
	}
}
