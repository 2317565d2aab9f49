// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holoauth/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "schema",
			Short: "Print the config file JSON Schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				schema, err := config.GenerateSchema()
				if err != nil {
					return err
				}
				cmd.Println(string(schema))
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate FILE",
			Short: "Validate a YAML config file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := args[0]
				data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
				if err != nil {
					return oops.Code("CONFIG_LOAD_FAILED").With("file", path).Wrap(err)
				}
				if err := config.ValidateSchema(data); err != nil {
					return err
				}
				if _, err := config.Load(config.Source{File: path}); err != nil {
					return err
				}
				cmd.Printf("%s is valid\n", path)
				return nil
			},
		},
	)
	return cmd
}
