// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net"

	"github.com/holomush/holoauth/internal/auth"
	"github.com/holomush/holoauth/internal/config"
	"github.com/holomush/holoauth/internal/observability"
	"github.com/holomush/holoauth/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// Nil fields use their default implementations.
type ServeDeps struct {
	// StoreOpener opens the configured user store and returns a release func.
	// Default: openStore
	StoreOpener func(ctx context.Context, cfg config.StoreConfig) (auth.UserStore, func(), error)

	// NotifierFactory connects a reset notifier.
	// Default: notify.NewRabbitMQNotifier
	NotifierFactory func(url, queue string) (Notifier, error)

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// AutoMigratorFactory opens the migrator used when store.auto_migrate
	// is set for the postgres driver.
	// Default: store.NewMigrator
	AutoMigratorFactory func(databaseURL string) (AutoMigrator, error)

	// ListenerFactory opens the API listener.
	// Default: net.Listen
	ListenerFactory func(network, address string) (net.Listener, error)

	// LogWriter receives log output. Default: os.Stderr
	LogWriter io.Writer
}

// MigrateDeps contains injectable dependencies for the migrate commands.
type MigrateDeps struct {
	// MigratorFactory opens a migrator for a PostgreSQL URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)
}

// Notifier is a ResetNotifier that holds a connection.
type Notifier interface {
	auth.ResetNotifier
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	PendingMigrations() ([]store.Migration, error)
	AppliedMigrations() ([]store.Migration, error)
	Close() error
}
