package store

import (
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4/source"
)

// MigrationStatus compares a database schema with the embedded migrations.
type MigrationStatus struct {
	CurrentVersion uint
	LatestVersion  uint
	Dirty          bool
	Pending        bool
}

// LatestMigration returns the highest version src knows, or 0 when it has none.
func LatestMigration(src source.Driver) (uint, error) {
	v, err := src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return v, err
		}
		v = next
	}
}
