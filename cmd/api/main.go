package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/smartplate/config"
	"github.com/pageza/smartplate/internal/api"
	"github.com/pageza/smartplate/internal/client"
	"github.com/pageza/smartplate/internal/database"
	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/middleware"
	"github.com/pageza/smartplate/internal/pipeline"
	"github.com/pageza/smartplate/internal/router"
	"github.com/pageza/smartplate/internal/server"
	"github.com/pageza/smartplate/internal/service"
	"github.com/pageza/smartplate/internal/session"
	"github.com/pageza/smartplate/internal/web"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.LogLevel, config.IsProduction())
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("Server stopped")
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx := context.Background()

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db); err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	p, err := pipeline.Load(ctx, cfg, log)
	if err != nil {
		return err
	}

	var store session.Store = session.NewMemoryStore(cfg.SessionTTL)
	var rateLimit gin.HandlerFunc
	if redisClient != nil {
		store = session.NewRedisStore(redisClient, cfg.SessionTTL)
		if cfg.RateLimitPerHour > 0 {
			rateLimit = middleware.NewRecommendRateLimiter(redisClient, cfg.RateLimitPerHour).RateLimitMiddleware()
		}
	} else {
		log.Warn("REDIS_URL not set: session results are kept in memory and rate limiting is off")
	}

	engine, err := router.SetupRouter(log, router.Config{
		TrustedProxies: cfg.TrustedProxies,
		API: api.Deps{
			Recommend:   service.NewRecommendService(p),
			Users:       service.NewUserService(db),
			Feedback:    service.NewFeedbackService(db),
			RateLimit:   rateLimit,
			CORSOrigins: cfg.CORSOrigins,
			Health:      healthChecks(db, redisClient),
		},
		Pages: web.NewHandler(
			client.New(cfg.APIBaseURL, cfg.APITimeout),
			store,
			web.Options{ChartEnabled: true},
		),
		Sessions: middleware.NewSessionManager(cfg.SecretKey, cfg.SessionTTL, config.IsProduction()),
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg.ServerAddr(), engine, log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func healthChecks(db *gorm.DB, redisClient *redis.Client) map[string]api.Pinger {
	checks := map[string]api.Pinger{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}
