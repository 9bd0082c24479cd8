// Package config loads the application configuration from the
// environment, with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/macrointel/macrointel/internal/infrastructure/db"
)

// AppConfig holds everything the process needs to start.
type AppConfig struct {
	HTTPAddr     string
	LogLevel     string
	WeightsPath  string
	PlaybookPath string
	SchedulePath string
	ReadingsPath string
	Storage      db.Config
}

// Default returns the configuration used when no environment is set.
func Default() AppConfig {
	return AppConfig{
		HTTPAddr:     ":8080",
		LogLevel:     "info",
		WeightsPath:  "config/component_weights.yaml",
		PlaybookPath: "config/playbook.yaml",
		SchedulePath: "config/schedule.yaml",
		ReadingsPath: "config/readings.sample.json",
		Storage:      db.DefaultConfig(),
	}
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment
// variables win over it.
func Load() AppConfig {
	_ = godotenv.Load()

	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.HTTPAddr, "MACROINTEL_HTTP_ADDR")
	setString(&cfg.LogLevel, "MACROINTEL_LOG_LEVEL")
	setString(&cfg.WeightsPath, "MACROINTEL_WEIGHTS_PATH")
	setString(&cfg.PlaybookPath, "MACROINTEL_PLAYBOOK_PATH")
	setString(&cfg.SchedulePath, "MACROINTEL_SCHEDULE_PATH")
	setString(&cfg.ReadingsPath, "MACROINTEL_READINGS_PATH")

	setString(&cfg.Storage.Postgres.DSN, "PG_DSN")
	setBool(&cfg.Storage.Postgres.Enabled, "PG_ENABLED")
	setInt(&cfg.Storage.Postgres.MaxOpenConns, "PG_MAX_OPEN_CONNS")
	setInt(&cfg.Storage.Postgres.MaxIdleConns, "PG_MAX_IDLE_CONNS")
	setDuration(&cfg.Storage.Postgres.ConnMaxLifetime, "PG_CONN_MAX_LIFETIME")
	setDuration(&cfg.Storage.Postgres.QueryTimeout, "PG_QUERY_TIMEOUT")

	setString(&cfg.Storage.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Storage.Redis.Password, "REDIS_PASSWORD")
	setBool(&cfg.Storage.Redis.Enabled, "REDIS_ENABLED")
	setInt(&cfg.Storage.Redis.DB, "REDIS_DB")
	setDuration(&cfg.Storage.Redis.TTL, "REDIS_TTL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
