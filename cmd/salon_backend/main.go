package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/salon_management_app/internal/core/services"
	"github.com/SscSPs/salon_management_app/internal/handlers"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/SscSPs/salon_management_app/internal/platform/config"
	"github.com/SscSPs/salon_management_app/internal/platform/jobs"
	"github.com/SscSPs/salon_management_app/internal/platform/metrics"
	"github.com/SscSPs/salon_management_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/salon_management_app/internal/repositories/memory"
	"github.com/SscSPs/salon_management_app/internal/utils"
	"github.com/SscSPs/salon_management_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// @title Salon Management API
// @version 1.0
// @description Multi-tenant backend for beauty salons: scheduling, catalogue, sales, stock and payments.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	serviceContainer := services.NewServiceContainer(cfg, repos)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, metrics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), metrics.GinMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	if cfg.RateLimit != "" {
		globalLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
		if err != nil {
			logger.Error("Invalid RATE_LIMIT", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
			os.Exit(1)
		}
		r.Use(middleware.RateLimit(globalLimiter))
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var loginLimiter *limiter.Limiter
	if cfg.LoginRateLimit != "" {
		loginLimiter, err = middleware.NewMemoryLimiter(cfg.LoginRateLimit)
		if err != nil {
			logger.Error("Invalid LOGIN_RATE_LIMIT", slog.String("rate", cfg.LoginRateLimit), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, loginLimiter); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	scheduler := jobs.NewScheduler(logger)
	if cfg.AppointmentSweepEnabled {
		if err := scheduler.RegisterAppointmentSweep(cfg.AppointmentSweepSchedule, serviceContainer.Appointment); err != nil {
			logger.Error("Failed to schedule appointment sweep", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	scheduler.Stop(ctx)
	logger.Info("Server exited")
}

// openStore builds the repositories for the configured STORE_DRIVER.
func openStore(cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart.")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	closeFn := func() { database.ClosePgxPool(dbPool, logger) }

	if cfg.RunMigrations {
		logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
		applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger)
		if err != nil {
			closeFn()
			return portsrepo.RepositoryProvider{}, nil, err
		}
		if applied {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}
	}

	return pgsql.NewRepositoryProvider(dbPool), closeFn, nil
}
