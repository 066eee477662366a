package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/corelord/corelord/internal/api"
	"github.com/corelord/corelord/internal/api/handlers"
	"github.com/corelord/corelord/internal/cache"
	"github.com/corelord/corelord/internal/config"
	"github.com/corelord/corelord/internal/database"
	"github.com/corelord/corelord/internal/marine"
	"github.com/corelord/corelord/internal/middleware"
	"github.com/corelord/corelord/internal/services"
	"github.com/corelord/corelord/internal/telemetry"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := buildLogger(cfg)
	ctx := context.Background()

	telemetryProvider, err := telemetry.Setup(ctx, &cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.Fatalf("Failed to initialize telemetry: %v", err)
	}

	logBridge, err := telemetry.SetupLogBridge(ctx, &cfg.Telemetry, cfg.Environment, logger)
	if err != nil {
		logger.WithError(err).Warn("OTLP log export disabled")
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	pool := database.NewTracedPool(db.Pool)

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	marineService := marine.NewService(&cfg.Marine, logger)
	defer func() { _ = marineService.Close() }()
	if err := marineService.Initialize(ctx); err != nil {
		// The catalog retries through the refresher; readiness stays
		// false until a load succeeds.
		logger.WithError(err).Error("Failed to load break catalog on startup")
	}

	forecastCache := cache.NewRedisForecastCache(redisClient.Client, cfg.ForecastCacheTTL())
	forecastProvider := services.NewCachedForecastProvider(forecastCache, marineService, logger)
	repo := database.NewPlannerRepository(pool)

	location := cfg.PlannerLocation()
	planner := services.NewPlannerService(marineService, forecastProvider, repo, logger, location, cfg.Planner.FetchConcurrency)
	summaries := services.NewSummaryService(forecastProvider, logger, location)

	refresher := services.NewForecastRefresher(marineService, marineService, forecastCache, services.RefresherConfig{
		Interval:  parseDuration(cfg.Refresher.Interval, time.Hour),
		MaxErrors: cfg.Refresher.MaxErrors,
	}, logger)
	if err := refresher.Start(); err != nil {
		logger.WithError(err).Warn("Forecast refresher not started")
	} else {
		defer refresher.Stop()
	}

	notifier := services.NewNotificationService(repo, planner, cfg.Telegram.BotToken, services.AlertConfig{
		Interval: parseDuration(cfg.Telegram.AlertInterval, 6*time.Hour),
	}, logger)
	notifier.Start()
	defer notifier.Stop()

	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.JWTSecret, cfg.JWTExpiry())
	adminMiddleware := middleware.NewAdminMiddleware(os.Getenv("ADMIN_API_KEY"))

	router := buildRouter(cfg)
	api.SetupRoutes(router, &api.Dependencies{
		Health:      handlers.NewHealthHandler(db, redisClient, marineService, version),
		Users:       handlers.NewUserHandler(pool, authMiddleware, cfg.Security.BcryptCost),
		Preferences: handlers.NewPreferencesHandler(repo),
		Forecasts:   handlers.NewForecastHandler(marineService, forecastProvider, summaries),
		Planner:     handlers.NewPlannerHandler(planner, cfg.Planner.DefaultLimit),
		Admin:       handlers.NewAdminHandler(forecastCache, refresher, marineService, notifier),
		Auth:        authMiddleware,
		AdminAuth:   adminMiddleware,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Telemetry shutdown failed")
	}
	if err := logBridge.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Log export shutdown failed")
	}

	logger.Info("Server exited")
}

func buildLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.StandardLogger()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func buildRouter(cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(telemetry.ServiceName, otelgin.WithFilter(func(req *http.Request) bool {
		path := req.URL.Path
		return path != "/health" && path != "/ready" && path != "/live"
	})))
	return router
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
