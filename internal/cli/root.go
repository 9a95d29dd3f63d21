package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bizreview/internal/config"
	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/db/mysql"
	"github.com/AI2HU/bizreview/internal/db/sqlite"
	"github.com/AI2HU/bizreview/internal/db/sqlstore"
	"github.com/AI2HU/bizreview/internal/logger"
	"github.com/AI2HU/bizreview/internal/models"
	"github.com/AI2HU/bizreview/internal/secrets"
)

const configPathEnv = "BIZREVIEW_CONFIG_PATH"

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bizreview",
	Short: "REST API for businesses and their reviews",
	Long: `bizreview serves a REST API for businesses and the reviews users write
about them, backed by MySQL on Cloud SQL (or SQLite for local runs).

Configuration comes from an optional YAML file overlaid by environment
variables (PORT, INSTANCE_CONNECTION_NAME, DB_NAME, DB_USER, DB_PASS, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip init for the init command itself
		if cmd.Name() == "init" {
			return nil
		}

		var err error
		cfg, err = loadConfig(cmd, os.LookupEnv)
		if err != nil {
			return err
		}

		logger.Init(logger.ParseLogLevel(cfg.Log.Level), logger.ParseFormat(cfg.Log.Format), os.Stdout)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bizreview/config.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// configPath returns the config file to read and whether it was asked for
// explicitly, in which case it must exist.
func configPath(lookup config.LookupFunc) (string, bool) {
	if cfgFile != "" {
		return cfgFile, true
	}
	if envPath, ok := lookup(configPathEnv); ok && envPath != "" {
		return envPath, true
	}
	return config.GetConfigPath(), false
}

// loadConfig reads the optional config file, overlays the environment and the
// command line flags, and validates the result.
func loadConfig(cmd *cobra.Command, lookup config.LookupFunc) (*config.Config, error) {
	path, explicit := configPath(lookup)

	c := config.DefaultConfig()
	switch {
	case config.Exists(path):
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	case explicit:
		return nil, fmt.Errorf("configuration file not found at %s. Run 'bizreview init' to create one", path)
	}

	if err := c.ApplyEnv(lookup); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		c.Server.Port = f.Value.String()
	}
	if f := cmd.Flags().Lookup("host"); f != nil && f.Changed {
		c.Server.Host = f.Value.String()
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// newStore builds the store for the configured provider without connecting
func newStore(ctx context.Context, c *config.Config) (*sqlstore.SQLStore, error) {
	password, err := resolvePassword(ctx, c)
	if err != nil {
		return nil, err
	}

	dbConfig := &models.Config{
		Provider:               c.Database.Provider,
		InstanceConnectionName: c.Database.InstanceConnectionName,
		CredentialsFile:        c.Database.CredentialsFile,
		PrivateIP:              c.Database.PrivateIP,
		Host:                   c.Database.Host,
		Port:                   c.Database.Port,
		Path:                   c.Database.Path,
		Database:               c.Database.Name,
		User:                   c.Database.User,
		Password:               password,
		MaxOpenConns:           c.MaxInFlight(),
		MaxIdleConns:           c.Server.Threads,
	}

	var dialect db.Dialect
	switch dbConfig.Provider {
	case "cloudsql", "mysql":
		dialect, err = mysql.New(dbConfig)
	case "sqlite":
		dialect, err = sqlite.New(dbConfig)
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", dbConfig.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	return sqlstore.New(dialect), nil
}

// resolvePassword returns DB_PASS, or reads DB_PASS_SECRET from Secret Manager
func resolvePassword(ctx context.Context, c *config.Config) (string, error) {
	d := c.Database
	if d.Provider == "sqlite" || d.Password != "" || d.PasswordSecret == "" {
		return d.Password, nil
	}

	accessor, err := secrets.NewSecretManager(ctx, d.CredentialsFile)
	if err != nil {
		return "", err
	}
	defer accessor.Close()

	password, err := secrets.Resolve(ctx, accessor, d.Password, d.PasswordSecret)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database password: %w", err)
	}

	logger.Info("Database password read from %s", d.PasswordSecret)
	return password, nil
}
