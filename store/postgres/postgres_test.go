package postgres

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/store"
)

func TestMigrations_EmbeddedSourceParses(t *testing.T) {
	// GIVEN: The embedded migrations directory
	// WHEN: Opening it as a golang-migrate iofs source
	// THEN: Version 1 has both an up and a down script

	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, name, err := src.ReadUp(first)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	up.Close()
	require.NoError(t, err)
	assert.Equal(t, "init", name)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS employees")
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS week_targets")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	body, err = io.ReadAll(down)
	down.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP TABLE IF EXISTS employees")

	latest, err := store.LatestMigration(src)
	require.NoError(t, err)
	assert.Equal(t, uint(1), latest)
}

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"postgres scheme", "postgres://app:secret@db:5432/payroll?sslmode=disable", "pgx5://app:secret@db:5432/payroll?sslmode=disable", false},
		{"postgresql scheme", "postgresql://localhost/payroll", "pgx5://localhost/payroll", false},
		{"already pgx5", "pgx5://localhost/payroll", "pgx5://localhost/payroll", false},
		{"keyword dsn", "host=localhost dbname=payroll", "", true},
		{"other database", "mysql://localhost/payroll", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := migrationURL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMigrationURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrate_RejectsKeywordDSNBeforeConnecting(t *testing.T) {
	_, err := Migrate("host=localhost dbname=payroll")
	assert.ErrorIs(t, err, ErrMigrationURL)
}
