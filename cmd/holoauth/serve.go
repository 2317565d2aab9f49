// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holoauth/internal/api"
	"github.com/holomush/holoauth/internal/auth"
	"github.com/holomush/holoauth/internal/config"
	"github.com/holomush/holoauth/internal/logging"
	"github.com/holomush/holoauth/internal/notify"
	"github.com/holomush/holoauth/internal/observability"
	"github.com/holomush/holoauth/internal/store"
	"github.com/holomush/holoauth/pkg/errutil"
)

// serviceName is attached to every log record.
const serviceName = "holoauth"

// shutdownTimeout bounds graceful shutdown of each server.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand. A nil deps uses defaults.
func NewServeCmd(deps *ServeDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the holoauth HTTP API with the configured user store, and the
metrics and health server when metrics.addr is set. Runs until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.Source{File: configPath(cmd), Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServeWithDeps(ctx, cfg, cmd, deps)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.StoreOpener == nil {
		out.StoreOpener = openStore
	}
	if out.NotifierFactory == nil {
		out.NotifierFactory = func(url, queue string) (Notifier, error) {
			return notify.NewRabbitMQNotifier(url, queue)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, ready, logger)
		}
	}
	if out.AutoMigratorFactory == nil {
		out.AutoMigratorFactory = func(databaseURL string) (AutoMigrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.ListenerFactory == nil {
		out.ListenerFactory = net.Listen
	}
	return &out
}

// runServeWithDeps runs the API until ctx is cancelled or a server fails.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, deps.LogWriter)
	slog.SetDefault(logger)

	if cfg.Store.Driver == config.DriverPostgres && cfg.Store.AutoMigrate {
		if err := runAutoMigration(cfg.Store.DatabaseURL, deps.AutoMigratorFactory, logger); err != nil {
			return err
		}
	}

	userStore, closeStore, err := deps.StoreOpener(ctx, cfg.Store)
	if err != nil {
		return oops.Code("STORE_OPEN_FAILED").With("driver", cfg.Store.Driver).Wrap(err)
	}
	defer closeStore()

	hasher, err := auth.NewPasswordHasher(cfg.Hasher.Algorithm, cfg.Hasher.BcryptCost)
	if err != nil {
		return err
	}

	opts := []auth.Option{auth.WithLogger(logger)}

	if cfg.Notify.RabbitMQURL != "" {
		notifier, nfErr := deps.NotifierFactory(cfg.Notify.RabbitMQURL, cfg.Notify.Queue)
		if nfErr != nil {
			return oops.Code("NOTIFIER_START_FAILED").Wrap(nfErr)
		}
		defer func() {
			if closeErr := notifier.Close(); closeErr != nil {
				logger.Warn("error closing reset notifier", "error", closeErr)
			}
		}()
		opts = append(opts, auth.WithResetNotifier(notifier))
		logger.Info("reset notifications enabled", "queue", cfg.Notify.Queue)
	}

	var requests api.RequestObserver
	var obsServer ObservabilityServer
	if cfg.Metrics.Addr != "" {
		pinger, _ := userStore.(auth.Pinger)
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, observability.StoreReadiness(pinger), logger)
		obsErrCh, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(startErr)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if stopErr := obsServer.Stop(stopCtx); stopErr != nil {
				logger.Warn("error stopping observability server", "error", stopErr)
			}
		}()
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)

		metrics := obsServer.Metrics()
		opts = append(opts, auth.WithObserver(metrics))
		requests = metrics
	}

	svc, err := auth.NewService(userStore, hasher, opts...)
	if err != nil {
		return err
	}

	listener, err := deps.ListenerFactory("tcp", cfg.HTTP.Addr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}
	httpServer := api.NewHTTPServer(cfg.HTTP.Addr, api.NewRouter(svc, logger, requests))

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	cmd.Println("holoauth listening on " + listener.Addr().String())
	logger.Info("holoauth ready",
		"http_addr", listener.Addr().String(),
		"store_driver", cfg.Store.Driver,
		"hash_algorithm", cfg.Hasher.Algorithm,
	)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		runErr = oops.Code("HTTP_SERVE_FAILED").Wrap(err)
		errutil.LogError(logger, "http server failed", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}

	logger.Info("shutdown complete")
	return runErr
}

// monitorServerErrors cancels the run when a background server fails.
// It returns when the channel closes or ctx ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown", "server", serverName, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
