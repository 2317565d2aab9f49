// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/holoauth/internal/xdg"
)

// configFlag names the persistent config file flag.
const configFlag = "config"

// NewRootCmd creates the root command for the holoauth CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil, nil)
}

func newRootCmdWithDeps(serveDeps *ServeDeps, migrateDeps *MigrateDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holoauth",
		Short: "holoauth - a minimal authentication service",
		Long: `holoauth registers users, validates credentials, issues and revokes
session tokens, and runs single-use password resets over HTTP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String(configFlag, "", "config file path (default: $XDG_CONFIG_HOME/holoauth/config.yaml if present)")

	cmd.AddCommand(NewServeCmd(serveDeps))
	cmd.AddCommand(NewMigrateCmd(migrateDeps))
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// configPath returns the --config value inherited by cmd, or the XDG
// config file when the flag is unset and that file exists.
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flag(configFlag); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return xdg.FindConfigFile()
}
