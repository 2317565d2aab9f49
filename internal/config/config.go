// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads and validates holoauth configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// command-line flags. DATABASE_URL and RABBITMQ_URL from the environment
// (or a .env file) override the matching settings last.
package config

import (
	"slices"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/holomush/holoauth/internal/auth"
	"github.com/holomush/holoauth/internal/logging"
	"github.com/holomush/holoauth/internal/notify"
	"github.com/holomush/holoauth/internal/xdg"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the full holoauth configuration.
type Config struct {
	HTTP    HTTPConfig    `koanf:"http" json:"http,omitempty" yaml:"http"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics,omitempty" yaml:"metrics"`
	Store   StoreConfig   `koanf:"store" json:"store,omitempty" yaml:"store"`
	Hasher  HasherConfig  `koanf:"hasher" json:"hasher,omitempty" yaml:"hasher"`
	Log     LogConfig     `koanf:"log" json:"log,omitempty" yaml:"log"`
	Notify  NotifyConfig  `koanf:"notify" json:"notify,omitempty" yaml:"notify"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" yaml:"addr" jsonschema:"description=API listen address (host:port)"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" yaml:"addr" jsonschema:"description=Metrics and health probe listen address; empty disables"`
}

// StoreConfig selects and configures the user store.
type StoreConfig struct {
	Driver         string `koanf:"driver" json:"driver,omitempty" yaml:"driver" jsonschema:"enum=postgres,enum=sqlite,enum=memory"`
	DatabaseURL    string `koanf:"database_url" json:"database_url,omitempty" yaml:"database_url" jsonschema:"description=PostgreSQL connection URL"`
	SQLitePath     string `koanf:"sqlite_path" json:"sqlite_path,omitempty" yaml:"sqlite_path" jsonschema:"description=SQLite database file or :memory:"`
	ConnectRetries int    `koanf:"connect_retries" json:"connect_retries,omitempty" yaml:"connect_retries" jsonschema:"minimum=0"`
	// AutoMigrate applies pending migrations before serving. PostgreSQL only.
	AutoMigrate bool `koanf:"auto_migrate" json:"auto_migrate,omitempty" yaml:"auto_migrate" jsonschema:"description=Apply pending PostgreSQL migrations on serve"`
}

// HasherConfig selects the password hash algorithm.
type HasherConfig struct {
	Algorithm  string `koanf:"algorithm" json:"algorithm,omitempty" yaml:"algorithm" jsonschema:"enum=argon2id,enum=bcrypt"`
	BcryptCost int    `koanf:"bcrypt_cost" json:"bcrypt_cost,omitempty" yaml:"bcrypt_cost" jsonschema:"minimum=0,maximum=31"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" yaml:"format" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// NotifyConfig configures out-of-band reset notifications. An empty
// RabbitMQURL disables them.
type NotifyConfig struct {
	RabbitMQURL string `koanf:"rabbitmq_url" json:"rabbitmq_url,omitempty" yaml:"rabbitmq_url"`
	Queue       string `koanf:"queue" json:"queue,omitempty" yaml:"queue"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP:    HTTPConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Store: StoreConfig{
			Driver:         DriverSQLite,
			SQLitePath:     xdg.SQLitePath(),
			ConnectRetries: 5,
		},
		Hasher: HasherConfig{Algorithm: auth.AlgorithmArgon2id},
		Log:    LogConfig{Format: logging.FormatJSON, Level: "info"},
		Notify: NotifyConfig{Queue: notify.DefaultQueue},
	}
}

func invalid(field string, value any, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").
		With("field", field).
		With("value", value).
		Errorf(format, args...)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return invalid("http.addr", c.HTTP.Addr, "http.addr is required")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return invalid("store.database_url", "", "store.database_url (or DATABASE_URL) is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return invalid("store.sqlite_path", "", "store.sqlite_path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return invalid("store.driver", c.Store.Driver, "unknown store driver %q", c.Store.Driver)
	}
	if c.Store.ConnectRetries < 0 {
		return invalid("store.connect_retries", c.Store.ConnectRetries, "store.connect_retries must not be negative")
	}

	if !slices.Contains([]string{auth.AlgorithmArgon2id, auth.AlgorithmBcrypt}, c.Hasher.Algorithm) {
		return invalid("hasher.algorithm", c.Hasher.Algorithm, "unknown hash algorithm %q", c.Hasher.Algorithm)
	}
	if c.Hasher.BcryptCost != 0 && (c.Hasher.BcryptCost < bcrypt.MinCost || c.Hasher.BcryptCost > bcrypt.MaxCost) {
		return invalid("hasher.bcrypt_cost", c.Hasher.BcryptCost,
			"hasher.bcrypt_cost must be 0 or between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Log.Format != logging.FormatJSON && c.Log.Format != logging.FormatText {
		return invalid("log.format", c.Log.Format, "unknown log format %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, "unknown log level %q", c.Log.Level)
	}

	if c.Notify.RabbitMQURL != "" && c.Notify.Queue == "" {
		return invalid("notify.queue", "", "notify.queue is required when notify.rabbitmq_url is set")
	}
	return nil
}
