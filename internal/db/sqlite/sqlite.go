// Package sqlite is the local and test dialect of the store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/mattn/go-sqlite3"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/models"
)

// SQLite implements the Dialect interface for SQLite
type SQLite struct {
	config *models.Config
}

// New creates a new SQLite dialect
func New(config *models.Config) (*SQLite, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	return &SQLite{
		config: config,
	}, nil
}

// Name returns the dialect name
func (s *SQLite) Name() string {
	return "sqlite"
}

// Open opens the database file, creating its directory when needed
func (s *SQLite) Open(ctx context.Context) (*sql.DB, error) {
	dbPath, err := expandPath(s.config.Path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}

	// A single writer avoids SQLITE_BUSY between pooled connections.
	conn.SetMaxOpenConns(1)

	return conn, nil
}

// Close is a no-op; the pool owns every resource
func (s *SQLite) Close() error {
	return nil
}

// TranslateError maps SQLite constraint errors onto the store's sentinel errors
func (s *SQLite) TranslateError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", db.ErrDuplicateReview, err)
	default:
		return fmt.Errorf("%w: %v", db.ErrConstraint, err)
	}
}

// MigrationDriver wraps the pool for golang-migrate
func (s *SQLite) MigrationDriver(conn *sql.DB) (database.Driver, error) {
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return nil, err
	}
	return sharedDriver{driver}, nil
}

// sharedDriver keeps the migration driver from closing the store's pool.
type sharedDriver struct {
	database.Driver
}

func (sharedDriver) Close() error {
	return nil
}

// expandPath handles ~ and relative paths
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return absPath, nil
}
