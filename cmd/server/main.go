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

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/membership-fees/internal/auth"
	"github.com/segyhp/membership-fees/internal/cache"
	"github.com/segyhp/membership-fees/internal/config"
	"github.com/segyhp/membership-fees/internal/events"
	"github.com/segyhp/membership-fees/internal/handler"
	"github.com/segyhp/membership-fees/internal/logger"
	"github.com/segyhp/membership-fees/internal/metrics"
	"github.com/segyhp/membership-fees/internal/repository"
	"github.com/segyhp/membership-fees/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	if cfg.IsProduction() && cfg.Redis.URL == "" {
		log.Warn("REDIS_URL not set, dashboard stats will be recomputed on every request")
	}

	if cfg.Database.AutoMigrate {
		if err := repository.RunMigrations(cfg.Database.DSN()); err != nil {
			log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Error("Failed to initialize redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher := initPublisher(cfg, log)
	defer publisher.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	ledgerRepo := repository.NewLedgerRepository(db)
	citizenRepo := repository.NewCitizenRepository(db)
	familyRepo := repository.NewFamilyMemberRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	statsCache := cache.NewStatsCache(redisClient, cfg.Redis.StatsCacheTTL)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	// Initialize services
	ledgerService := service.NewLedgerService(ledgerRepo, citizenRepo, publisher, statsCache, m, log)
	statsService := service.NewStatsService(ledgerRepo, citizenRepo, familyRepo, statsCache, m, log, cfg.GetSchedulerLocation())
	familyService := service.NewFamilyService(familyRepo, citizenRepo, statsCache, log)
	authService := service.NewAuthService(adminRepo, citizenRepo, tokens, log)

	router := handler.NewRouter(handler.RouterDeps{
		Fees:    handler.NewFeeHandler(ledgerService, log),
		Stats:   handler.NewStatsHandler(statsService),
		Auth:    handler.NewAuthHandler(authService),
		Family:  handler.NewFamilyHandler(familyService),
		Health:  handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
		Tokens:  tokens,
		Metrics: promhttp.Handler(),
		Logger:  log,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// initRedis returns nil when no REDIS_URL is configured.
func initRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// initPublisher falls back to a no-op publisher when the broker is not
// configured or unreachable.
func initPublisher(cfg *config.Config, log *slog.Logger) events.Publisher {
	if cfg.AMQP.URL == "" {
		return events.NopPublisher{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
	if err != nil {
		log.Warn("Event publishing disabled", "error", err)
		return events.NopPublisher{}
	}
	return p
}
