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
	"github.com/robfig/cron/v3"
	"github.com/segyhp/membership-fees/internal/cache"
	"github.com/segyhp/membership-fees/internal/config"
	"github.com/segyhp/membership-fees/internal/events"
	"github.com/segyhp/membership-fees/internal/logger"
	"github.com/segyhp/membership-fees/internal/metrics"
	"github.com/segyhp/membership-fees/internal/repository"
	"github.com/segyhp/membership-fees/internal/service"
)

const jobTimeout = 10 * time.Minute

type jobs struct {
	rollover  *service.RolloverService
	reminders *service.ReminderService
	loc       *time.Location
	log       *slog.Logger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging).With("component", "scheduler")
	slog.SetDefault(log)
	log.Info("Starting fee scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			log.Warn("Event publishing disabled", "error", err)
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	ledgerRepo := repository.NewLedgerRepository(db)
	citizenRepo := repository.NewCitizenRepository(db)
	ledgerService := service.NewLedgerService(ledgerRepo, citizenRepo, publisher, cache.NewStatsCache(redisClient, cfg.Redis.StatsCacheTTL), m, log)

	j := &jobs{
		rollover:  service.NewRolloverService(ledgerRepo, ledgerService, cfg.GetDefaultMonthlyAmount(), m, log),
		reminders: service.NewReminderService(ledgerRepo, publisher, log, cfg.GetSchedulerLocation()),
		loc:       cfg.GetSchedulerLocation(),
		log:       log,
	}

	// Initialize cron scheduler
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(j.loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	if err := setupCronJobs(c, cfg, j); err != nil {
		log.Error("Failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{Addr: cfg.Scheduler.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("Metrics listener stopped", "error", err)
		}
	}()

	// Start the scheduler
	c.Start()
	log.Info("Scheduler started successfully", "timezone", j.loc.String())

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	<-c.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)
	log.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, j *jobs) error {
	// Yearly rollover, default Jan 1 00:05
	if _, err := c.AddFunc(cfg.Scheduler.RolloverSchedule, j.runRollover); err != nil {
		return err
	}

	// Monthly dues reminder, default 1st of the month 09:00
	if _, err := c.AddFunc(cfg.Scheduler.ReminderSchedule, j.runReminders); err != nil {
		return err
	}

	j.log.Info("Cron jobs scheduled successfully",
		"rollover", cfg.Scheduler.RolloverSchedule,
		"reminder", cfg.Scheduler.ReminderSchedule)
	return nil
}

func (j *jobs) runRollover() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	year := time.Now().In(j.loc).Year()
	j.log.Info("Running yearly ledger rollover job...", "year", year)
	if _, err := j.rollover.Rollover(ctx, year); err != nil {
		j.log.Error("Ledger rollover failed", "year", year, "error", err)
	}
}

func (j *jobs) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	j.log.Info("Running monthly dues reminder job...")
	sent, err := j.reminders.SendDueReminders(ctx)
	if err != nil {
		j.log.Error("Dues reminder job failed", "error", err)
		return
	}
	j.log.Info("Dues reminders published", "count", sent)
}
