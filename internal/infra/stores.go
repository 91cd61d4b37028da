// Package infra opens the optional Postgres and Redis backends.
package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Migration prepares the schema a component needs.
type Migration func(ctx context.Context, db *pgxpool.Pool) error

// Options selects which stores to open. An empty URL leaves that store nil
// unless Required is set.
type Options struct {
	DatabaseURL    string
	RedisURL       string
	Required       bool
	ConnectTimeout time.Duration
	MaxConns       int32
	Migrations     []Migration
	Logger         *slog.Logger
}

// Stores holds the opened handles. Either may be nil in development.
type Stores struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
}

// Connect opens the configured stores and runs the migrations against
// Postgres. Handles opened before a failure are closed again.
func Connect(ctx context.Context, opts Options) (*Stores, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.Required && (opts.DatabaseURL == "" || opts.RedisURL == "") {
		return nil, errors.New("postgres and redis urls are required")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	s := &Stores{}
	if opts.DatabaseURL != "" {
		db, err := openPostgres(ctx, opts.DatabaseURL, opts.MaxConns)
		if err != nil {
			return nil, err
		}
		s.DB = db
		for _, m := range opts.Migrations {
			if err := m(ctx, db); err != nil {
				s.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
	} else if opts.Logger != nil {
		opts.Logger.Warn("postgres not configured, leads are kept in memory")
	}

	if opts.RedisURL != "" {
		cache, err := openRedis(ctx, opts.RedisURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Cache = cache
	} else if opts.Logger != nil {
		opts.Logger.Warn("redis not configured, codes and sessions are kept in memory")
	}

	return s, nil
}

// Close releases every opened handle.
func (s *Stores) Close() error {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.Cache != nil {
		return s.Cache.Close()
	}
	return nil
}

func openPostgres(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
