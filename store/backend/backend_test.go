package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/store"
)

func TestMigrate_SQLiteReportsLatestVersion(t *testing.T) {
	// GIVEN: A fresh SQLite file
	// WHEN: Migrating it twice
	// THEN: Both runs report version 1 of 1

	cfg := config.Server{DBDriver: config.DriverSQLite, DBDSN: filepath.Join(t.TempDir(), "payroll.db")}

	msg, err := Migrate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite "+cfg.DBDSN+" at version 1 of 1", msg)

	msg, err = Migrate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite "+cfg.DBDSN+" at version 1 of 1", msg)
}

func TestMigrate_MemoryAndUnknownDriver(t *testing.T) {
	msg, err := Migrate(context.Background(), config.Server{DBDriver: config.DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, "memory store has no schema", msg)

	_, err = Migrate(context.Background(), config.Server{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestDescribe_Dirty(t *testing.T) {
	got := Describe("postgres", &store.MigrationStatus{CurrentVersion: 1, LatestVersion: 2, Dirty: true, Pending: true})
	assert.Equal(t, "postgres at version 1 of 2 (dirty)", got)
}
