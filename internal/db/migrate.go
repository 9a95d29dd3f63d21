package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/AI2HU/bizreview/internal/db/migrations"
	"github.com/AI2HU/bizreview/internal/logger"
)

// newMigrate builds a migrate instance reading the embedded migrations of the dialect
func newMigrate(dialect Dialect, db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, dialect.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", dialect.Name(), err)
	}

	driver, err := dialect.MigrationDriver(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", dialect.Name(), err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect.Name(), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// RunMigrations applies all pending migrations
func RunMigrations(dialect Dialect, db *sql.DB) error {
	m, err := newMigrate(dialect, db)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("Schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Applied %s migrations", dialect.Name())
	return nil
}

// MigrationVersion reports the current schema version. A database without any
// applied migration reports version 0.
func MigrationVersion(dialect Dialect, db *sql.DB) (uint, bool, error) {
	m, err := newMigrate(dialect, db)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}

	return version, dirty, nil
}
