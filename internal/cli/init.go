package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bizreview/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bizreview configuration",
	Long: `Interactive wizard to write a bizreview configuration file with the
server and database settings. Passwords are never written to the file: set
DB_PASS at run time or give a Secret Manager secret instead.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println(FormatHeader("🚀 Welcome to bizreview setup"))
	fmt.Println("=============================")
	fmt.Println()

	// Check if config already exists
	path, _ := configPath(os.LookupEnv)
	if config.Exists(path) {
		fmt.Printf("Configuration file already exists at: %s\n", path)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	c := config.DefaultConfig()

	// Server configuration
	fmt.Println("\n🌐 Server Configuration")
	fmt.Println("-----------------------")

	port, err := promptDefault(reader, "Port [8080]: ", c.Server.Port, validatePort)
	if err != nil {
		return err
	}
	c.Server.Port = port

	publicHost, err := promptOptional(reader, "Public host for links (empty uses the request Host header): ", "")
	if err != nil {
		return err
	}
	c.Server.PublicHost = publicHost

	level, err := promptDefault(reader, "Log level [INFO]: ", c.Log.Level, validateLogLevel)
	if err != nil {
		return err
	}
	c.Log.Level = level

	// Database configuration
	fmt.Println("\n📊 Database Configuration")
	fmt.Println("--------------------------")

	provider, err := promptDefault(reader, "Database provider (cloudsql/mysql/sqlite) [cloudsql]: ", "cloudsql", validateProvider)
	if err != nil {
		return err
	}
	c.Database.Provider = provider

	if err := promptDatabase(reader, c); err != nil {
		return err
	}

	// Test database connection
	test, err := promptYesNo(reader, "\nTest the database connection now? (y/N): ")
	if err != nil {
		return err
	}
	if test {
		if err := testConnection(c); err != nil {
			fmt.Println(FormatError("❌ " + err.Error()))
			fmt.Println("\nPlease check your database configuration and try again.")
			return err
		}
		fmt.Println(FormatSuccess("✅ Database connection successful!"))
	}

	// Save configuration
	fmt.Println("\n💾 Saving configuration...")
	password := c.Database.Password
	c.Database.Password = ""
	if err := c.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	c.Database.Password = password

	fmt.Println(FormatSuccess("✅ Configuration saved to: " + path))

	// Summary
	fmt.Println()
	fmt.Println(FormatHeader("📋 Configuration Summary"))
	fmt.Println(FormatLabelValue("Listen:", c.Address()))
	fmt.Println(FormatLabelValue("Database:", c.Database.Provider))
	switch c.Database.Provider {
	case "cloudsql":
		fmt.Println(FormatLabelValue("Instance:", c.Database.InstanceConnectionName))
	case "mysql":
		fmt.Println(FormatLabelValue("Host:", c.Database.Host))
	case "sqlite":
		fmt.Println(FormatLabelValue("Path:", c.Database.Path))
	}
	fmt.Println()
	fmt.Println("Next steps:")
	if c.Database.Provider != "sqlite" && c.Database.PasswordSecret == "" {
		fmt.Println("  1. Export the database password: export DB_PASS=...")
	} else {
		fmt.Println("  1. Nothing else to set")
	}
	fmt.Println("  2. Apply migrations: bizreview migrate up")
	fmt.Println("  3. Start the server: bizreview serve")

	return nil
}

// promptDatabase asks for the settings of the selected provider
func promptDatabase(reader *bufio.Reader, c *config.Config) error {
	var err error

	switch c.Database.Provider {
	case "sqlite":
		c.Database.Path, err = promptOptional(reader, "Database file [~/.bizreview/bizreview.db]: ", "~/.bizreview/bizreview.db")
		return err
	case "cloudsql":
		c.Database.InstanceConnectionName, err = promptWithRetry(reader, "Instance connection name (project:region:instance): ", validateInstanceConnectionName)
		if err != nil {
			return err
		}
		c.Database.CredentialsFile, err = promptOptional(reader, "Service account key file (empty uses default credentials): ", "")
		if err != nil {
			return err
		}
		c.Database.PrivateIP, err = promptYesNo(reader, "Connect over private IP? (y/N): ")
		if err != nil {
			return err
		}
	case "mysql":
		c.Database.Host, err = promptOptional(reader, "Host [127.0.0.1]: ", "127.0.0.1")
		if err != nil {
			return err
		}
	}

	c.Database.Name, err = promptRequired(reader, "Database name: ")
	if err != nil {
		return err
	}
	c.Database.User, err = promptRequired(reader, "Database user: ")
	if err != nil {
		return err
	}
	c.Database.PasswordSecret, err = promptWithRetry(reader, "Password secret (projects/.../versions/latest, empty to use DB_PASS): ", validateSecretName)
	if err != nil {
		return err
	}

	// The password is only used for the connection test
	if c.Database.PasswordSecret == "" {
		c.Database.Password, err = promptOptional(reader, "Password for the connection test (not saved): ", "")
		if err != nil {
			return err
		}
	}

	return nil
}

// testConnection opens and pings the configured database
func testConnection(c *config.Config) error {
	fmt.Println("\n🔌 Testing database connection...")

	ctx := context.Background()
	store, err := newStore(ctx, c)
	if err != nil {
		return err
	}
	if err := store.Open(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Disconnect(ctx)

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
