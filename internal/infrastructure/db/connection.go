// Package db manages the optional persistence backends: a PostgreSQL
// connection pool for snapshot history and a Redis client for the
// latest-snapshot cache. Both are disabled by default; the scoring
// pipeline runs fully in-memory without them.
package db

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/macrointel/macrointel/internal/persistence"
	"github.com/macrointel/macrointel/internal/persistence/postgres"
	"github.com/macrointel/macrointel/internal/persistence/redis"
)

// Config holds connection settings for both backends.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

// PostgresConfig holds database connection configuration.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn" env:"PG_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"PG_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"PG_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PG_CONN_MAX_LIFETIME"`
	QueryTimeout    time.Duration `yaml:"query_timeout" env:"PG_QUERY_TIMEOUT"`
	Enabled         bool          `yaml:"enabled" env:"PG_ENABLED"`
}

// RedisConfig holds cache connection configuration.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL"`
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED"`
}

// DefaultConfig returns reasonable defaults with both backends disabled.
func DefaultConfig() Config {
	return Config{
		Postgres: PostgresConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    30 * time.Second,
		},
		Redis: RedisConfig{
			TTL: 5 * time.Minute,
		},
	}
}

// Manager owns the backend connections and the repository set built on
// them. Disabled backends leave the corresponding repository field nil.
type Manager struct {
	db     *sqlx.DB
	rdb    *goredis.Client
	config Config
	repos  persistence.Repository
}

// NewManager opens the enabled backends and verifies connectivity.
func NewManager(ctx context.Context, config Config) (*Manager, error) {
	m := &Manager{config: config}

	if config.Postgres.Enabled {
		if config.Postgres.DSN == "" {
			return nil, fmt.Errorf("database DSN is required when postgres is enabled")
		}

		db, err := sqlx.Open("postgres", config.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(config.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(config.Postgres.ConnMaxLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		m.db = db
		m.repos.Snapshots = postgres.NewSnapshotRepo(db, config.Postgres.QueryTimeout)
	}

	if config.Redis.Enabled {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			if m.db != nil {
				m.db.Close()
			}
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}

		m.rdb = rdb
		m.repos.Cache = redis.NewLatestCache(rdb, config.Redis.TTL)
	}

	return m, nil
}

// Repository returns the repository set. Fields for disabled backends
// are nil, which the pipeline treats as "no persistence".
func (m *Manager) Repository() persistence.Repository {
	return m.repos
}

// Ping tests connectivity to the enabled backends.
func (m *Manager) Ping(ctx context.Context) error {
	if m.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, m.config.Postgres.QueryTimeout)
		defer cancel()
		if err := m.db.PingContext(pingCtx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	if m.rdb != nil {
		if err := m.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

// Close closes whatever connections were opened.
func (m *Manager) Close() error {
	var firstErr error
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			firstErr = err
		}
	}
	if m.rdb != nil {
		if err := m.rdb.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
