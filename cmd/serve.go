package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/cinetro/internal/api"
	"github.com/jon4hz/cinetro/internal/cache"
	"github.com/jon4hz/cinetro/internal/database"
	"github.com/jon4hz/cinetro/internal/notify/email"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Cinetro server",
	Long:  `Start the Cinetro server to serve the catalog API, the media files and the contact form.`,
	Example: `cinetro serve --config config.yml
cinetro serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	client, err := database.New(cfg.Database, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer client.Close() //nolint:errcheck

	var db database.DB = client
	var cached *cache.CatalogCache
	if cfg.CacheEnabled() {
		cached, err = cache.NewCatalogCache(cfg.Cache, client)
		if err != nil {
			log.Fatalf("failed to create catalog cache: %v", err)
		}
		db = cached
		log.Info("Catalog cache enabled", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)
	}

	notifier := email.New(cfg.Email, cfg.GetSiteName())
	if !notifier.Enabled() {
		log.Warn("Email notifications are disabled, contact messages will only be stored")
	}

	server, err := api.New(cfg, db, notifier)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("cinetro started successfully")
	if err := server.Run(ctx); err != nil {
		log.Fatalf("API server error: %v", err)
	}
	if cached != nil {
		logCacheStats(cached)
	}
	log.Info("cinetro stopped")
}

func logCacheStats(c *cache.CatalogCache) {
	for _, s := range c.CacheStats() {
		log.Debug("Catalog cache stats",
			"cache", s.CacheName,
			"hits", s.Hits,
			"misses", s.Miss,
			"set_errors", s.SetError,
			"invalidations", s.InvalidateSuccess,
		)
	}
}
