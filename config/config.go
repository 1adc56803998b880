// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ERRORS
// ═══════════════════════════════════════════════════════════════════════════

var (
	ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")
	ErrInvalidValue       = errors.New("config: invalid value")
)

// ═══════════════════════════════════════════════════════════════════════════
// TYPES
// ═══════════════════════════════════════════════════════════════════════════

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Server    ServerConfig
	Scheduler SchedulerConfig
	Admin     AdminConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name     string
	Env      string // development, staging, production
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

// RedisConfig holds Redis connection settings. URL is optional: when empty
// the application falls back to the in-process ranking cache.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CacheConfig holds ranking cache settings.
type CacheConfig struct {
	RankingTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	Enabled           bool
	ReconcileInterval time.Duration
	SyncLevelInterval time.Duration
	JobTimeout        time.Duration
}

// AdminConfig holds admin endpoint settings. KeyHash is a bcrypt hash of the
// admin API key; empty disables the admin endpoints.
type AdminConfig struct {
	KeyHash string
}

// ═══════════════════════════════════════════════════════════════════════════
// LOADING
// ═══════════════════════════════════════════════════════════════════════════

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "orbita-learning-hub"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "INFO"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        getEnvInt("DATABASE_MAX_CONNS", 10),
			MinConns:        getEnvInt("DATABASE_MIN_CONNS", 2),
			MaxConnLifetime: getEnvDuration("DATABASE_MAX_CONN_LIFETIME", time.Hour),
			ConnectTimeout:  getEnvDuration("DATABASE_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 2*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 2*time.Second),
		},
		Cache: CacheConfig{
			RankingTTL: getEnvDuration("RANKING_CACHE_TTL", 30*time.Second),
		},
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Scheduler: SchedulerConfig{
			Enabled:           getEnvBool("SCHEDULER_ENABLED", true),
			ReconcileInterval: getEnvDuration("SCHEDULER_RECONCILE_INTERVAL", 24*time.Hour),
			SyncLevelInterval: getEnvDuration("SCHEDULER_SYNC_LEVEL_INTERVAL", 6*time.Hour),
			JobTimeout:        getEnvDuration("SCHEDULER_JOB_TIMEOUT", 10*time.Minute),
		},
		Admin: AdminConfig{
			KeyHash: os.Getenv("ADMIN_KEY_HASH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Cache.RankingTTL <= 0 {
		return fmt.Errorf("%w: RANKING_CACHE_TTL must be positive", ErrInvalidValue)
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("%w: DATABASE_MAX_CONNS must be >= DATABASE_MIN_CONNS", ErrInvalidValue)
	}
	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// ───────────────────────────────────────────────────────────────────────────
// helpers
// ───────────────────────────────────────────────────────────────────────────

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
