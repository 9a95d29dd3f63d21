package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bizreview/internal/api"
	"github.com/AI2HU/bizreview/internal/cache"
	"github.com/AI2HU/bizreview/internal/config"
	"github.com/AI2HU/bizreview/internal/health"
	"github.com/AI2HU/bizreview/internal/logger"
)

var (
	servePort string
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server with CRUD operations for:
- Businesses (/businesses, /owners/:owner_id/businesses)
- Reviews (/reviews, /users/:user_id/reviews)

Pending migrations are applied on start. The server stops gracefully on
SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to run the API server on (overrides PORT)")
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "0.0.0.0", "Host to bind the API server to (overrides HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting bizreview API server")
	logger.Info("Database provider: %s", cfg.Database.Provider)
	logger.Info("Max in-flight requests: %d (%d workers x %d threads)", cfg.MaxInFlight(), cfg.Server.Workers, cfg.Server.Threads)

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Disconnect(context.Background())

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection successful")

	c := openCache(ctx, cfg)
	defer c.Close()

	monitor := health.NewMonitor("")
	monitor.Register("database", store.Ping)
	if cfg.CacheProvider() == "redis" {
		monitor.Register("cache", c.Ping)
	}
	if err := monitor.Start(ctx); err != nil {
		return err
	}
	defer monitor.Stop()

	server := api.NewServer(store, c, monitor, api.Options{
		PublicScheme:   cfg.Server.PublicScheme,
		PublicHost:     cfg.Server.PublicHost,
		MaxInFlight:    cfg.MaxInFlight(),
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		CacheTTL:       time.Duration(cfg.Cache.TTL) * time.Second,
	})

	return server.Run(ctx, cfg.Address())
}

// openCache returns the configured cache. An unreachable Redis falls back to
// no caching so the API keeps serving from the database.
func openCache(ctx context.Context, c *config.Config) cache.Cache {
	switch c.CacheProvider() {
	case "memory":
		logger.Info("Using in-process cache")
		return cache.NewMemory(cache.DefaultMemorySize, time.Duration(c.Cache.TTL)*time.Second)
	case "redis":
		redisConfig := cache.DefaultRedisConfig(c.Cache.RedisAddr)
		redisConfig.Password = c.Cache.RedisPassword
		redisConfig.DB = c.Cache.RedisDB

		redisCache, err := cache.NewRedis(ctx, redisConfig)
		if err != nil {
			logger.Warning("Redis unavailable, caching disabled: %v", err)
			return cache.Noop{}
		}
		logger.Info("Using redis cache at %s", c.Cache.RedisAddr)
		return redisCache
	default:
		return cache.Noop{}
	}
}
