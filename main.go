package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/SAP-F-2025/learning-content-service/internal/auth"
	"github.com/SAP-F-2025/learning-content-service/internal/config"
	"github.com/SAP-F-2025/learning-content-service/internal/events"
	"github.com/SAP-F-2025/learning-content-service/internal/handlers"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories/gormstore"
	"github.com/SAP-F-2025/learning-content-service/internal/services"
	"github.com/SAP-F-2025/learning-content-service/internal/utils"
	"github.com/SAP-F-2025/learning-content-service/internal/validator"
	"github.com/SAP-F-2025/learning-content-service/pkg"
)

var rootCmd = &cobra.Command{
	Use:   "learning-content",
	Short: "Learning content API: materials, categories and accounts",
	// serve is the default
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default categories that are missing",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// bootstrap loads configuration and installs the JSON logger as slog default
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)

	return cfg, slogLogger, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// shutdownRepositories releases database and Redis on a failed startup
func shutdownRepositories(logger utils.Logger, repoManager *gormstore.RepositoryManager) {
	if err := repoManager.Shutdown(context.Background()); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := pkg.OpenDatabase(cfg.Database, gormlogger.Warn)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	if err := pkg.Migrate(cmd.Context(), db); err != nil {
		return err
	}

	logger.Info("Database migrated", "driver", cfg.Database.Driver)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	repo := gormstore.NewGormRepository(gormstore.RepositoryConfig{DB: db})
	added, err := services.NewCategoryService(repo, logger).Seed(cmd.Context())
	if err != nil {
		return err
	}

	logger.Info("Categories seeded", "added", added)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, slogLogger, err := bootstrap()
	if err != nil {
		return err
	}
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.UseRedisCache() {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis disabled", "error", err)
		}
	}

	repoManager := gormstore.NewRepositoryManager(gormstore.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		CacheTTL:    cfg.CacheTTL,
	})
	if err := repoManager.Initialize(); err != nil {
		closeDatabase(db)
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	repo := repoManager.GetRepository()

	eventsCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	publisher, err := events.NewPublisher(cfg.Events, slogLogger)
	if err != nil {
		shutdownRepositories(logger, repoManager)
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	if wp, ok := publisher.(*events.WatermillPublisher); ok {
		messages, err := wp.Subscribe(eventsCtx)
		switch {
		case err == nil:
			go events.LogEvents(eventsCtx, messages, slogLogger)
		case !errors.Is(err, events.ErrSubscribeUnsupported):
			logger.Warn("Event log subscriber not started", "error", err)
		}
	}

	// Token verification follows the configured identity provider
	var (
		verifier auth.TokenVerifier
		issuer   auth.TokenIssuer
	)
	switch cfg.Auth.Provider {
	case config.AuthProviderCasdoor:
		verifier = auth.NewCasdoorVerifier(cfg.Casdoor, repo.User())
	default:
		jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
		verifier, issuer = jwtManager, jwtManager
	}

	serviceManager := services.NewServiceManager(repo, slogLogger, validator.New(), services.ServiceManagerConfig{
		EnforceOwnership: cfg.Auth.EnforceOwnership,
		Publisher:        publisher,
		TokenIssuer:      issuer,
	})
	if err := serviceManager.Initialize(cmd.Context()); err != nil {
		shutdownRepositories(logger, repoManager)
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.Database.Seed {
		added, err := serviceManager.Category().Seed(cmd.Context())
		if err != nil {
			logger.Warn("Category seed failed", "error", err)
		} else {
			logger.Info("Categories seeded", "added", added)
		}
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, verifier, logger, handlers.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateRPS:    cfg.LoginRateLimitRPS,
		AuthRateBurst:  cfg.LoginRateLimitBurst,
	})
	router := handlers.NewRouter(handlerManager, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment,
			"auth_provider", cfg.Auth.Provider, "events_backend", cfg.Events.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopEvents()

	// Closes the event publisher
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	// Closes database and Redis
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
	return runErr
}
