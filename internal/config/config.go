package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// Workers * Threads bounds the number of requests served at once
	Workers int `yaml:"workers"`
	Threads int `yaml:"threads"`

	RequestTimeout int     `yaml:"request_timeout"` // seconds, 0 disables
	RateLimit      float64 `yaml:"rate_limit"`      // requests per second, 0 disables
	RateBurst      int     `yaml:"rate_burst"`

	// Absolute links in responses are built from these
	PublicScheme string `yaml:"public_scheme"`
	PublicHost   string `yaml:"public_host,omitempty"` // empty uses the request Host header
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Provider string `yaml:"provider"` // cloudsql, mysql, sqlite

	InstanceConnectionName string `yaml:"instance_connection_name,omitempty"` // project:region:instance
	CredentialsFile        string `yaml:"credentials_file,omitempty"`
	PrivateIP              bool   `yaml:"private_ip,omitempty"`

	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`

	Path string `yaml:"path,omitempty"`

	Name           string `yaml:"name,omitempty"`
	User           string `yaml:"user,omitempty"`
	Password       string `yaml:"password,omitempty"`
	PasswordSecret string `yaml:"password_secret,omitempty"` // Secret Manager version resource name
}

// CacheConfig represents the optional Redis cache configuration
type CacheConfig struct {
	Provider      string `yaml:"provider,omitempty"` // none, memory, redis; empty picks redis when an address is set
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
	TTL           int    `yaml:"ttl"` // seconds
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			Workers:      2,
			Threads:      8,
			PublicScheme: "https",
		},
		Database: DatabaseConfig{
			Provider: "cloudsql",
		},
		Cache: CacheConfig{
			TTL: 300,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Load loads configuration from file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides configuration values from environment variables. The
// variable names match the container contract (PORT, INSTANCE_CONNECTION_NAME,
// DB_NAME, DB_USER, DB_PASS, GOOGLE_APPLICATION_CREDENTIALS, ...).
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = b
		return nil
	}

	str("HOST", &c.Server.Host)
	str("PORT", &c.Server.Port)
	str("PUBLIC_SCHEME", &c.Server.PublicScheme)
	str("PUBLIC_HOST", &c.Server.PublicHost)

	str("DB_PROVIDER", &c.Database.Provider)
	str("INSTANCE_CONNECTION_NAME", &c.Database.InstanceConnectionName)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Database.CredentialsFile)
	str("DB_HOST", &c.Database.Host)
	str("DB_NAME", &c.Database.Name)
	str("DB_USER", &c.Database.User)
	str("DB_PASS", &c.Database.Password)
	str("DB_PASS_SECRET", &c.Database.PasswordSecret)
	str("SQLITE_PATH", &c.Database.Path)

	str("CACHE_PROVIDER", &c.Cache.Provider)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	for key, dst := range map[string]*int{
		"WORKERS":         &c.Server.Workers,
		"THREADS":         &c.Server.Threads,
		"REQUEST_TIMEOUT": &c.Server.RequestTimeout,
		"RATE_BURST":      &c.Server.RateBurst,
		"DB_PORT":         &c.Database.Port,
		"REDIS_DB":        &c.Cache.RedisDB,
		"CACHE_TTL":       &c.Cache.TTL,
	} {
		if err := integer(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("RATE_LIMIT"); ok && v != "" {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT %q: %w", v, err)
		}
		c.Server.RateLimit = rate
	}

	if err := boolean("PRIVATE_IP", &c.Database.PrivateIP); err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is complete for the selected provider
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Server.Port)
	}
	if c.Server.Workers < 1 || c.Server.Threads < 1 {
		return fmt.Errorf("workers and threads must be positive (got %d and %d)", c.Server.Workers, c.Server.Threads)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.Server.PublicScheme != "http" && c.Server.PublicScheme != "https" {
		return fmt.Errorf("public scheme must be http or https, got %q", c.Server.PublicScheme)
	}

	switch c.CacheProvider() {
	case "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache provider: %s", c.Cache.Provider)
	}

	d := c.Database
	switch d.Provider {
	case "cloudsql":
		if d.InstanceConnectionName == "" {
			return fmt.Errorf("missing database connection type: INSTANCE_CONNECTION_NAME is required")
		}
		if !ValidInstanceConnectionName(d.InstanceConnectionName) {
			return fmt.Errorf("invalid INSTANCE_CONNECTION_NAME %q, expected project:region:instance", d.InstanceConnectionName)
		}
		if d.CredentialsFile != "" && !Exists(d.CredentialsFile) {
			return fmt.Errorf("credentials file not found: %s", d.CredentialsFile)
		}
		return validateMySQLCredentials(d)
	case "mysql":
		if d.Host == "" {
			return fmt.Errorf("DB_HOST is required for the mysql provider")
		}
		return validateMySQLCredentials(d)
	case "sqlite":
		if d.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite provider")
		}
		return nil
	default:
		return fmt.Errorf("unsupported database provider: %s", d.Provider)
	}
}

func validateMySQLCredentials(d DatabaseConfig) error {
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" && d.PasswordSecret == "" {
		return fmt.Errorf("DB_PASS or DB_PASS_SECRET is required")
	}
	return nil
}

// ValidInstanceConnectionName accepts project:region:instance, where the
// project may be domain scoped (example.com:project).
func ValidInstanceConnectionName(name string) bool {
	parts := strings.Split(name, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// CacheProvider returns the effective cache provider
func (c *Config) CacheProvider() string {
	if c.Cache.Provider != "" {
		return c.Cache.Provider
	}
	if c.Cache.RedisAddr != "" {
		return "redis"
	}
	return "none"
}

// Address returns the host:port the server binds to
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// MaxInFlight returns how many requests may be served concurrently
func (c *Config) MaxInFlight() int {
	return c.Server.Workers * c.Server.Threads
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bizreview/config.yaml"
	}
	return filepath.Join(home, ".bizreview", "config.yaml")
}

// Exists checks if a file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
