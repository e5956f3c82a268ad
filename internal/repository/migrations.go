package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const migrationsSource = "file://internal/repository/migrations"

// RunMigrations applies all pending schema migrations. A dirty state left by
// a crashed previous run is forced back to the last clean version and the
// migrations are retried once.
func RunMigrations(databaseURL string) error {
	m, err := migrate.New(migrationsSource, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}

	var dirtyErr migrate.ErrDirty
	if !errors.As(err, &dirtyErr) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return recoverDirty(m, dirtyErr)
}

func recoverDirty(m *migrate.Migrate, dirtyErr migrate.ErrDirty) error {
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("get current migration version: %w", err)
	}
	if !dirty {
		return fmt.Errorf("dirty migrations at version %d and could not auto-fix", dirtyErr.Version)
	}

	forceVersion := int(version) - 1
	if forceVersion < 0 {
		forceVersion = 0
	}
	if err := m.Force(forceVersion); err != nil {
		return fmt.Errorf("force clean migration version %d: %w", forceVersion, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rerun migrations after dirty state: %w", err)
	}

	return nil
}
