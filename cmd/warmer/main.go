package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/dummyjson"
	"github.com/steemit/postsmanager/internal/query"
	"github.com/steemit/postsmanager/internal/resource"
	"github.com/steemit/postsmanager/pkg/config"
	"github.com/steemit/postsmanager/pkg/logging"
	"github.com/steemit/postsmanager/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Posts Manager cache warmer")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Without a mirror there is nothing to share with the API servers
	if !cfg.Redis.Enabled {
		logger.Fatal("Cache warmer requires redis_url")
	}
	mirror, err := cache.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer mirror.Close()

	client, err := dummyjson.New(&cfg.Backend)
	if err != nil {
		logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cache.NewStore(mirror)
	resource.RegisterKinds(store)
	svc := resource.New(query.New(store), client)

	warm := func() {
		start := time.Now()
		if err := svc.Warm(ctx, cfg.View.PageSize, cfg.Warmer.Pages); err != nil {
			logger.Error("Cache warm failed", zap.Error(err))
			return
		}
		logger.Info("Cache warmed",
			zap.Int("pages", cfg.Warmer.Pages),
			zap.Duration("elapsed", time.Since(start)))
	}

	warm()
	if cfg.Warmer.Interval == 0 {
		logger.Info("Cache warmer exited")
		return
	}

	ticker := time.NewTicker(cfg.Warmer.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			warm()
		case <-ctx.Done():
			logger.Info("Shutting down cache warmer...")
			return
		}
	}
}
