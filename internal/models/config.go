package models

// Configuration models

// Config holds database configuration
type Config struct {
	Provider string // cloudsql, mysql, sqlite

	// Cloud SQL
	InstanceConnectionName string // project:region:instance
	CredentialsFile        string
	PrivateIP              bool

	// TCP (Cloud SQL Auth Proxy or a plain MySQL server)
	Host string
	Port int

	// SQLite
	Path string

	Database string
	User     string
	Password string

	MaxOpenConns int
	MaxIdleConns int
}
