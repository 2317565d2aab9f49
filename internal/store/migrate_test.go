// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holoauth/pkg/errutil"
)

// mockMigrate implements migrateIface for testing.
type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	stepsArg       int
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDBErr     error
}

func (m *mockMigrate) Up() error   { return m.upErr }
func (m *mockMigrate) Down() error { return m.downErr }
func (m *mockMigrate) Steps(n int) error {
	m.stepsArg = n
	return m.stepsErr
}
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Force(_ int) error            { return m.forceErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDBErr }

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@db:5432/auth", "pgx5://u:p@db:5432/auth"},
		{"postgresql://u:p@db/auth?sslmode=disable", "pgx5://u:p@db/auth?sslmode=disable"},
		{"pgx5://db/auth", "pgx5://db/auth"},
		{"sqlite://x", "sqlite://x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MigrateURL(tt.in), tt.in)
	}
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/testdb")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigrator_NoChangeIsSuccess(t *testing.T) {
	m := &Migrator{m: &mockMigrate{
		upErr:    migrate.ErrNoChange,
		downErr:  migrate.ErrNoChange,
		stepsErr: migrate.ErrNoChange,
	}}
	assert.NoError(t, m.Up())
	assert.NoError(t, m.Down())
	assert.NoError(t, m.Steps(0))
}

func TestMigrator_ErrorsCarryCodes(t *testing.T) {
	boom := errors.New("database locked")
	m := &Migrator{m: &mockMigrate{
		upErr:      boom,
		downErr:    boom,
		stepsErr:   boom,
		versionErr: boom,
		forceErr:   boom,
	}}

	errutil.AssertErrorCode(t, m.Up(), "MIGRATION_UP_FAILED")
	errutil.AssertErrorCode(t, m.Down(), "MIGRATION_DOWN_FAILED")

	err := m.Steps(-2)
	errutil.AssertErrorCode(t, err, "MIGRATION_STEPS_FAILED")
	errutil.AssertErrorContext(t, err, "steps", -2)

	_, _, err = m.Version()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")

	errutil.AssertErrorCode(t, m.Force(1), "MIGRATION_FORCE_FAILED")
}

func TestMigrator_Steps_PassesCount(t *testing.T) {
	mm := &mockMigrate{}
	m := &Migrator{m: mm}
	require.NoError(t, m.Steps(-1))
	assert.Equal(t, -1, mm.stepsArg)
}

func TestMigrator_Version(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionVal: 2, dirty: true}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.True(t, dirty)

	m = &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
	v, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)
}

func TestMigrator_Force_NegativeVersionRejected(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	errutil.AssertErrorCode(t, m.Force(-1), "INVALID_VERSION")
	assert.NoError(t, m.Force(0))
}

func TestMigrator_Close(t *testing.T) {
	assert.NoError(t, (&Migrator{m: &mockMigrate{}}).Close())

	err := (&Migrator{m: &mockMigrate{
		closeSourceErr: errors.New("source close failed"),
		closeDBErr:     errors.New("db close failed"),
	}}).Close()
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	assert.Contains(t, err.Error(), "source close failed")
	assert.Contains(t, err.Error(), "db close failed")
}

func TestMigrations_Embedded(t *testing.T) {
	all, err := Migrations()
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: 1, Name: "000001_create_users"},
		{Version: 2, Name: "000002_index_user_tokens"},
	}, all)

	// Callers get a copy.
	all[0].Name = "changed"
	again, err := Migrations()
	require.NoError(t, err)
	assert.Equal(t, "000001_create_users", again[0].Name)

	for _, mig := range again {
		_, err := migrationsFS.ReadFile("migrations/" + mig.Name + ".down.sql")
		assert.NoError(t, err, "every up migration has a down migration")
	}
}

func TestReadMigrations_SkipsMalformed(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000003_third.up.sql":   {},
		"migrations/000001_first.up.sql":   {},
		"migrations/000001_first.down.sql": {},
		"migrations/README.md":             {},
		"migrations/bogus.up.sql":          {},
	}
	got, err := readMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: 1, Name: "000001_first"},
		{Version: 3, Name: "000003_third"},
	}, got)
}

func TestMigrator_PendingAndApplied(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionVal: 1}}

	pending, err := m.PendingMigrations()
	require.NoError(t, err)
	assert.Equal(t, []Migration{{Version: 2, Name: "000002_index_user_tokens"}}, pending)

	applied, err := m.AppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []Migration{{Version: 1, Name: "000001_create_users"}}, applied)

	fresh := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
	applied, err = fresh.AppliedMigrations()
	require.NoError(t, err)
	assert.Empty(t, applied)

	broken := &Migrator{m: &mockMigrate{versionErr: errors.New("conn lost")}}
	_, err = broken.PendingMigrations()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
}
