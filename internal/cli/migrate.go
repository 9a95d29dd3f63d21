package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/db/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  `Run the embedded database migrations with golang-migrate.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending database migrations.`,
	RunE:  runMigrateUp,
}

var migrateVersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"status"},
	Short:   "Show current migration version",
	Long:    `Show the current database migration version.`,
	RunE:    runMigrateVersion,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	fmt.Println("🔄 Running database migrations...")

	ctx := context.Background()
	store, err := openMigrationStore(ctx)
	if err != nil {
		return err
	}
	defer store.Disconnect(ctx)

	if err := db.RunMigrations(store.Dialect(), store.DB()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println(FormatSuccess("✅ Migrations completed successfully!"))
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openMigrationStore(ctx)
	if err != nil {
		return err
	}
	defer store.Disconnect(ctx)

	version, dirty, err := db.MigrationVersion(store.Dialect(), store.DB())
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	state := "clean"
	if dirty {
		state = FormatWarning("dirty")
	}

	fmt.Println(FormatHeader("📊 Migration Status"))
	fmt.Println(FormatLabelValue("Provider:", store.Dialect().Name()))
	fmt.Println(FormatLabelValue("Version:", fmt.Sprintf("%d", version)))
	fmt.Println(FormatLabelValue("State:", state))
	return nil
}

// openMigrationStore opens the database without applying migrations
func openMigrationStore(ctx context.Context) (*sqlstore.SQLStore, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store, nil
}
