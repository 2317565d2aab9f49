// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain points XDG lookups at an empty directory so a developer's own
// config file never leaks into command tests.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "holoauth-cmd-test")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	_ = os.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, err := execute(t, NewRootCmd(), "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "migrate", "config"} {
		assert.Contains(t, out, sub, "help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlagIsInherited(t *testing.T) {
	for _, args := range [][]string{
		{"--config", "/etc/holoauth.yaml", "config"},
		{"config", "--config=/etc/holoauth.yaml"},
	} {
		root := NewRootCmd()
		_, err := execute(t, root, args...)
		require.NoError(t, err)

		sub, _, err := root.Find([]string{"config"})
		require.NoError(t, err)
		assert.Equal(t, "/etc/holoauth.yaml", configPath(sub))
	}
}

func TestRootCommand_Version(t *testing.T) {
	root := NewRootCmd()
	root.Version = "1.2.3 (commit: abc, built: today)"

	out, err := execute(t, root, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3 (commit: abc, built: today)")
}

func TestServeCommand_Flags(t *testing.T) {
	serve := NewServeCmd(nil)
	for _, name := range []string{"http-addr", "metrics-addr", "store-driver", "sqlite-path", "log-format", "log-level"} {
		assert.NotNil(t, serve.Flags().Lookup(name), "missing flag %q", name)
	}
}

func TestConfigPath_FallsBackToXDGFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := NewRootCmd()
	assert.Empty(t, configPath(root))

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "holoauth", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	assert.Equal(t, path, configPath(root))

	require.NoError(t, root.PersistentFlags().Set("config", "/explicit.yaml"))
	assert.Equal(t, "/explicit.yaml", configPath(root))
}
