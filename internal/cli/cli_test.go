package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/bizreview/internal/cache"
	"github.com/AI2HU/bizreview/internal/config"
	"github.com/AI2HU/bizreview/internal/db"
)

func writeSQLiteConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	c := config.DefaultConfig()
	c.Database.Provider = "sqlite"
	c.Database.Path = filepath.Join(dir, "bizreview.db")

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, c.Save(path))
	return path
}

func lookupFrom(env map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfigPath(t *testing.T) {
	cfgFile = ""

	path, explicit := configPath(lookupFrom(nil))
	assert.Equal(t, config.GetConfigPath(), path)
	assert.False(t, explicit)

	path, explicit = configPath(lookupFrom(map[string]string{configPathEnv: "/etc/bizreview.yaml"}))
	assert.Equal(t, "/etc/bizreview.yaml", path)
	assert.True(t, explicit)

	cfgFile = "/tmp/flag.yaml"
	defer func() { cfgFile = "" }()
	path, _ = configPath(lookupFrom(map[string]string{configPathEnv: "/etc/bizreview.yaml"}))
	assert.Equal(t, "/tmp/flag.yaml", path)
}

func TestLoadConfigFlagOverridesEnv(t *testing.T) {
	cfgFile = ""
	env := map[string]string{
		configPathEnv: writeSQLiteConfig(t),
		"PORT":        "7000",
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("port", "8080", "")
	cmd.Flags().String("host", "0.0.0.0", "")

	c, err := loadConfig(cmd, lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", c.Address())

	require.NoError(t, cmd.Flags().Set("port", "9999"))
	c, err = loadConfig(cmd, lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", c.Address())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	cfgFile = ""
	env := map[string]string{configPathEnv: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := loadConfig(&cobra.Command{}, lookupFrom(env))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cfgFile = ""
	env := map[string]string{
		configPathEnv: writeSQLiteConfig(t),
		"WORKERS":     "0",
	}

	_, err := loadConfig(&cobra.Command{}, lookupFrom(env))
	assert.Error(t, err)
}

func TestNewStoreSQLite(t *testing.T) {
	c := config.DefaultConfig()
	c.Database.Provider = "sqlite"
	c.Database.Path = filepath.Join(t.TempDir(), "store.db")

	ctx := context.Background()
	store, err := newStore(ctx, c)
	require.NoError(t, err)
	require.NoError(t, store.Connect(ctx))
	defer store.Disconnect(ctx)

	version, dirty, err := db.MigrationVersion(store.Dialect(), store.DB())
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 2, version)
}

func TestNewStoreUnknownProvider(t *testing.T) {
	c := config.DefaultConfig()
	c.Database.Provider = "oracle"

	_, err := newStore(context.Background(), c)
	assert.Error(t, err)
}

func TestMigrateCommands(t *testing.T) {
	cfgFile = ""
	t.Setenv(configPathEnv, writeSQLiteConfig(t))
	t.Setenv("DB_PROVIDER", "")

	rootCmd.SetArgs([]string{"migrate", "up"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"migrate", "version"})
	require.NoError(t, rootCmd.Execute())
}

func TestOpenCache(t *testing.T) {
	c := config.DefaultConfig()
	ctx := context.Background()

	assert.IsType(t, cache.Noop{}, openCache(ctx, c))

	c.Cache.Provider = "memory"
	assert.IsType(t, &cache.Memory{}, openCache(ctx, c))

	// unreachable redis falls back to no caching
	c.Cache.Provider = "redis"
	c.Cache.RedisAddr = "127.0.0.1:1"
	assert.IsType(t, cache.Noop{}, openCache(ctx, c))
}

func TestValidators(t *testing.T) {
	_, err := validateProvider("CloudSQL")
	assert.NoError(t, err)
	_, err = validateProvider("postgres")
	assert.Error(t, err)

	_, err = validatePort("8080")
	assert.NoError(t, err)
	_, err = validatePort("0")
	assert.Error(t, err)

	_, err = validateInstanceConnectionName("p:us-central1:i")
	assert.NoError(t, err)
	_, err = validateInstanceConnectionName("p:i")
	assert.Error(t, err)

	v, err := validateSecretName("")
	assert.NoError(t, err)
	assert.Empty(t, v)
	_, err = validateSecretName("db-pass")
	assert.Error(t, err)

	v, err = validateLogLevel("warn")
	assert.NoError(t, err)
	assert.Equal(t, "WARNING", v)
	_, err = validateLogLevel("loud")
	assert.Error(t, err)
}
