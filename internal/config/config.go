package config

import (
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Business  BusinessConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	URL           string
	StatsCacheTTL time.Duration
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type SchedulerConfig struct {
	RolloverSchedule string
	ReminderSchedule string
	Timezone         string
	MetricsAddr      string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BusinessConfig struct {
	DefaultMonthlyAmount string
}

type HealthConfig struct {
	Timeout time.Duration
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Missing .env files are fine; real environment always wins.
	_ = godotenv.Load(".env", "deployments/.env")

	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "membership_fees")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("STATS_CACHE_TTL", "30s")
	v.SetDefault("AMQP_EXCHANGE", "fees.events")
	v.SetDefault("JWT_ISSUER", "membership-fees")
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEFAULT_MONTHLY_AMOUNT", "100")
	v.SetDefault("ROLLOVER_SCHEDULE", "0 5 0 1 1 *")
	v.SetDefault("REMINDER_SCHEDULE", "0 0 9 1 * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("SCHEDULER_METRICS_ADDR", ":9091")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	v.AutomaticEnv()

	config := Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetString("DATABASE_PORT"),
			Name:            v.GetString("DATABASE_NAME"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			URL:           v.GetString("REDIS_URL"),
			StatsCacheTTL: v.GetDuration("STATS_CACHE_TTL"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			Issuer:    v.GetString("JWT_ISSUER"),
			TokenTTL:  v.GetDuration("JWT_TTL"),
		},
		Scheduler: SchedulerConfig{
			RolloverSchedule: v.GetString("ROLLOVER_SCHEDULE"),
			ReminderSchedule: v.GetString("REMINDER_SCHEDULE"),
			Timezone:         v.GetString("SCHEDULER_TIMEZONE"),
			MetricsAddr:      v.GetString("SCHEDULER_METRICS_ADDR"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			DefaultMonthlyAmount: v.GetString("DEFAULT_MONTHLY_AMOUNT"),
		},
		Health: HealthConfig{
			Timeout: v.GetDuration("HEALTH_CHECK_TIMEOUT"),
		},
	}

	if config.IsDevelopment() && config.Auth.JWTSecret == "" {
		config.Auth.JWTSecret = "dev-secret-key-change-in-production"
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST/DATABASE_NAME is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be a positive duration")
	}

	amount, err := decimal.NewFromString(c.Business.DefaultMonthlyAmount)
	if err != nil {
		return fmt.Errorf("DEFAULT_MONTHLY_AMOUNT must be a valid decimal: %w", err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("DEFAULT_MONTHLY_AMOUNT must be greater than 0")
	}

	if c.Redis.StatsCacheTTL < 0 {
		return fmt.Errorf("STATS_CACHE_TTL must not be negative")
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid time zone: %w", err)
	}

	return nil
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultMonthlyAmount returns the default monthly fee as decimal
func (c *Config) GetDefaultMonthlyAmount() decimal.Decimal {
	amount, _ := decimal.NewFromString(c.Business.DefaultMonthlyAmount)
	return amount
}

// GetSchedulerLocation returns the scheduler time zone
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
