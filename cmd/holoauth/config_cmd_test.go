// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holoauth/internal/config"
	"github.com/holomush/holoauth/pkg/errutil"
)

func TestConfigSchema(t *testing.T) {
	out, err := execute(t, NewRootCmd(), "config", "schema")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &doc))
	assert.Equal(t, config.SchemaID, doc["$id"])
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	good := write("good.yaml", "store:\n  driver: memory\nlog:\n  format: text\n")
	out, err := execute(t, NewRootCmd(), "config", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	// Passes the schema but fails semantic validation.
	t.Setenv("DATABASE_URL", "")
	semantic := write("semantic.yaml", "store:\n  driver: postgres\n")
	_, err = execute(t, NewRootCmd(), "config", "validate", semantic)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")

	schema := write("schema.yaml", "store:\n  driver: oracle\n")
	_, err = execute(t, NewRootCmd(), "config", "validate", schema)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")

	_, err = execute(t, NewRootCmd(), "config", "validate", filepath.Join(dir, "missing.yaml"))
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}
