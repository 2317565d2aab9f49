// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holoauth/internal/config"
	"github.com/holomush/holoauth/internal/store"
)

// NewMigrateCmd creates the migrate command group. A nil deps uses defaults.
func NewMigrateCmd(deps *MigrateDeps) *cobra.Command {
	if deps == nil {
		deps = &MigrateDeps{}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage PostgreSQL schema migrations",
		Long: `Manage the PostgreSQL users schema. The database URL comes from
DATABASE_URL or store.database_url in the config file.`,
	}

	var downSteps int
	var downAll bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if downAll {
					if err := m.Down(); err != nil {
						return err
					}
					cmd.Println("All migrations rolled back")
					return nil
				}
				if downSteps < 1 {
					return oops.Code("INVALID_STEPS").Errorf("--steps must be at least 1, got %d", downSteps)
				}
				if err := m.Steps(-downSteps); err != nil {
					return err
				}
				cmd.Printf("Rolled back %d migration(s)\n", downSteps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")
	down.Flags().BoolVar(&downAll, "all", false, "roll back every migration (drops all data)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, deps, func(m Migrator) error {
					pending, err := m.PendingMigrations()
					if err != nil {
						return err
					}
					if len(pending) == 0 {
						cmd.Println("No pending migrations")
						return nil
					}
					if err := m.Up(); err != nil {
						return err
					}
					for _, mig := range pending {
						cmd.Printf("Applied %06d_%s\n", mig.Version, mig.Name)
					}
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, deps, func(m Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					if dirty {
						cmd.Printf("Version: %d (dirty)\n", v)
					} else {
						cmd.Printf("Version: %d\n", v)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, deps, func(m Migrator) error {
					applied, err := m.AppliedMigrations()
					if err != nil {
						return err
					}
					pending, err := m.PendingMigrations()
					if err != nil {
						return err
					}
					for _, mig := range applied {
						cmd.Printf("[applied] %06d_%s\n", mig.Version, mig.Name)
					}
					for _, mig := range pending {
						cmd.Printf("[pending] %06d_%s\n", mig.Version, mig.Name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseForceVersion(args[0])
				if err != nil {
					return err
				}
				return withMigrator(cmd, deps, func(m Migrator) error {
					if err := m.Force(v); err != nil {
						return err
					}
					cmd.Printf("Forced version %d\n", v)
					return nil
				})
			},
		},
	)
	return cmd
}

// withMigrator resolves the database URL, opens a migrator, runs fn and
// closes the migrator.
func withMigrator(cmd *cobra.Command, deps *MigrateDeps, fn func(Migrator) error) (err error) {
	cfg, err := config.Load(config.Source{File: configPath(cmd)})
	if err != nil {
		return err
	}
	if cfg.Store.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "store.database_url").
			Errorf("%s or store.database_url is required", config.EnvDatabaseURL)
	}

	m, err := deps.MigratorFactory(cfg.Store.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}

// parseForceVersion reads a leading integer, ignoring surrounding space
// and anything after the digits.
func parseForceVersion(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	var v int
	if _, err := fmt.Sscanf(trimmed, "%d", &v); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("invalid version %q", s)
	}
	return v, nil
}
