package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/api"
	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/db"
	"github.com/steemit/postsmanager/internal/dummyjson"
	"github.com/steemit/postsmanager/internal/manager"
	"github.com/steemit/postsmanager/internal/mutation"
	"github.com/steemit/postsmanager/internal/query"
	"github.com/steemit/postsmanager/internal/resource"
	"github.com/steemit/postsmanager/internal/session"
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
	logger.Info("Starting Posts Manager API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Resource cache with optional Redis mirror
	mirror, err := cache.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer mirror.Close()
	store := cache.NewStore(mirror)
	resource.RegisterKinds(store)

	client, err := dummyjson.New(&cfg.Backend)
	if err != nil {
		logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	// Mutation journal is optional
	var (
		recorder mutation.Recorder
		journal  api.JournalReader
		database *db.DB
	)
	if cfg.Database.Enabled {
		database, err = db.New(&cfg.Database, cfg.Logging.Level)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.Close()

		j := db.NewJournal(database.DB)
		if err := j.Migrate(context.Background()); err != nil {
			logger.Fatal("Failed to prepare mutation journal", zap.Error(err))
		}
		recorder, journal = j, j
	} else {
		logger.Info("Mutation journal disabled, no database_url configured")
	}

	sess := session.New(cfg.View.NewPostUserID)

	m := manager.New(
		resource.New(query.New(store), client),
		mutation.New(client, store, sess, recorder),
		sess,
		store,
	)

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := api.NewRouter(m, journal)
	if mirror != nil {
		router.AddHealthCheck("redis", mirror)
	}
	if database != nil {
		router.AddHealthCheck("database", database)
	}
	router.SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
