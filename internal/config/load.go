// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variables that override file and flag settings.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvRabbitMQURL = "RABBITMQ_URL"
)

// DefaultEnvFile is loaded when Source.EnvFile is empty.
const DefaultEnvFile = ".env"

// Command-line flags bound to configuration keys.
const (
	FlagHTTPAddr    = "http-addr"
	FlagMetricsAddr = "metrics-addr"
	FlagStoreDriver = "store-driver"
	FlagSQLitePath  = "sqlite-path"
	FlagLogFormat   = "log-format"
	FlagLogLevel    = "log-level"
	FlagAutoMigrate = "auto-migrate"
)

var flagKeys = map[string]string{
	FlagHTTPAddr:    "http.addr",
	FlagMetricsAddr: "metrics.addr",
	FlagStoreDriver: "store.driver",
	FlagSQLitePath:  "store.sqlite_path",
	FlagLogFormat:   "log.format",
	FlagLogLevel:    "log.level",
	FlagAutoMigrate: "store.auto_migrate",
}

// RegisterFlags adds the configuration flags to fs with Default values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagHTTPAddr, d.HTTP.Addr, "API listen address")
	fs.String(FlagMetricsAddr, d.Metrics.Addr, "metrics listen address (empty disables)")
	fs.String(FlagStoreDriver, d.Store.Driver, "user store driver (postgres, sqlite, memory)")
	fs.String(FlagSQLitePath, d.Store.SQLitePath, "SQLite database path")
	fs.String(FlagLogFormat, d.Log.Format, "log format (json, text)")
	fs.String(FlagLogLevel, d.Log.Level, "log level (debug, info, warn, error)")
	fs.Bool(FlagAutoMigrate, d.Store.AutoMigrate, "apply pending PostgreSQL migrations before serving")
}

// Source describes where Load reads configuration from.
type Source struct {
	// File is an optional YAML config file.
	File string
	// Flags, if set, contributes explicitly changed flags from RegisterFlags.
	Flags *pflag.FlagSet
	// EnvFile is loaded into the process environment if it exists.
	EnvFile string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from src and validates it.
func Load(src Source) (*Config, error) {
	envFile := src.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("env_file", envFile).Wrap(err)
	}

	k := koanf.New(".")
	if src.File != "" {
		if err := k.Load(file.Provider(src.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("file", src.File).Wrap(err)
		}
	}
	if src.Flags != nil {
		provider := posflag.ProviderWithFlag(src.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(src.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "decode").Wrap(err)
	}

	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v, ok := lookup(EnvRabbitMQURL); ok && v != "" {
		cfg.Notify.RabbitMQURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
