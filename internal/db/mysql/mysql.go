// Package mysql is the production dialect of the store: MySQL reached either
// through the Cloud SQL dialer or over plain TCP.
package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/logger"
	"github.com/AI2HU/bizreview/internal/models"
)

// MySQL error numbers the store cares about
const (
	errDupEntry           = 1062
	errBadNull            = 1048
	errDataTooLong        = 1406
	errWarnDataOutOfRange = 1264
	errNoReferencedRow    = 1452
	errCheckViolated      = 3819
)

const cloudSQLNetwork = "cloudsql"

// MySQL implements the Dialect interface for MySQL and Cloud SQL for MySQL
type MySQL struct {
	config *models.Config

	mu        sync.Mutex
	dialer    *cloudsqlconn.Dialer
	driverCfg *mysql.Config
	connector driver.Connector
}

// New creates a new MySQL dialect
func New(config *models.Config) (*MySQL, error) {
	switch config.Provider {
	case "cloudsql":
		if config.InstanceConnectionName == "" {
			return nil, fmt.Errorf("instance connection name is required for cloudsql")
		}
	case "mysql":
		if config.Host == "" {
			return nil, fmt.Errorf("host is required for mysql")
		}
	default:
		return nil, fmt.Errorf("unsupported mysql provider: %s", config.Provider)
	}

	return &MySQL{
		config: config,
	}, nil
}

// Name returns the dialect name
func (m *MySQL) Name() string {
	return "mysql"
}

// Open builds the connector and returns a pool sized from the configuration
func (m *MySQL) Open(ctx context.Context) (*sql.DB, error) {
	connector, err := m.getConnector(ctx)
	if err != nil {
		return nil, err
	}

	conn := sql.OpenDB(connector)
	if m.config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(m.config.MaxOpenConns)
	}
	if m.config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(m.config.MaxIdleConns)
	}
	conn.SetConnMaxLifetime(30 * time.Minute)

	return conn, nil
}

func (m *MySQL) getConnector(ctx context.Context) (driver.Connector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connector != nil {
		return m.connector, nil
	}

	cfg, err := m.driverConfig(ctx)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}

	m.driverCfg = cfg
	m.connector = connector
	return connector, nil
}

// driverConfig translates the database configuration into a driver config.
// Callers hold m.mu.
func (m *MySQL) driverConfig(ctx context.Context) (*mysql.Config, error) {
	cfg := mysql.NewConfig()
	cfg.User = m.config.User
	cfg.Passwd = m.config.Password
	cfg.DBName = m.config.Database
	cfg.ParseTime = true

	if m.config.Provider == "mysql" {
		port := m.config.Port
		if port == 0 {
			port = 3306
		}
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(m.config.Host, strconv.Itoa(port))
		logger.Info("Connecting to MySQL at %s", cfg.Addr)
		return cfg, nil
	}

	opts := []cloudsqlconn.Option{cloudsqlconn.WithLazyRefresh()}
	if m.config.CredentialsFile != "" {
		opts = append(opts, cloudsqlconn.WithCredentialsFile(m.config.CredentialsFile))
	}
	if m.config.PrivateIP {
		opts = append(opts, cloudsqlconn.WithDefaultDialOptions(cloudsqlconn.WithPrivateIP()))
	}

	dialer, err := cloudsqlconn.NewDialer(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud sql dialer: %w", err)
	}
	m.dialer = dialer

	cfg.Net = cloudSQLNetwork
	cfg.Addr = m.config.InstanceConnectionName
	cfg.DialFunc = func(ctx context.Context, _, addr string) (net.Conn, error) {
		return dialer.Dial(ctx, addr)
	}

	logger.Info("Connecting to Cloud SQL instance %s (private IP: %t)", cfg.Addr, m.config.PrivateIP)
	return cfg, nil
}

// Close shuts down the Cloud SQL dialer, if any
func (m *MySQL) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dialer == nil {
		return nil
	}
	err := m.dialer.Close()
	m.dialer = nil
	m.driverCfg = nil
	m.connector = nil
	return err
}

// TranslateError maps MySQL error numbers onto the store's sentinel errors
func (m *MySQL) TranslateError(err error) error {
	return translateError(err)
}

func translateError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return err
	}

	switch mysqlErr.Number {
	case errDupEntry:
		return fmt.Errorf("%w: %v", db.ErrDuplicateReview, err)
	case errBadNull, errDataTooLong, errWarnDataOutOfRange, errNoReferencedRow, errCheckViolated:
		return fmt.Errorf("%w: %v", db.ErrConstraint, err)
	default:
		return err
	}
}

// MigrationDriver returns a golang-migrate driver on a pool of its own, so
// closing the driver leaves the store's pool open. Migration files hold
// several statements, which only that pool accepts.
func (m *MySQL) MigrationDriver(_ *sql.DB) (database.Driver, error) {
	if _, err := m.getConnector(context.Background()); err != nil {
		return nil, err
	}

	m.mu.Lock()
	cfg := m.driverCfg.Clone()
	m.mu.Unlock()
	cfg.MultiStatements = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration connector: %w", err)
	}

	conn := sql.OpenDB(connector)
	migrationDriver, err := migratemysql.WithInstance(conn, &migratemysql.Config{})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return migrationDriver, nil
}
