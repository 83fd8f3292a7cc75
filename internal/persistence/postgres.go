package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/config"
)

// ErrPostgresNotConfigured is returned by Ping when no DSN was supplied.
var ErrPostgresNotConfigured = errors.New("postgres not configured")

// retryDelay is the pause between connection attempts while the database boots.
var retryDelay = time.Second

// Postgres owns the pool backing the user and subscription stores.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects to the users database. Without a DSN it returns an
// unconnected handle whose Ping reports ErrPostgresNotConfigured.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; user store unavailable")
		return &Postgres{}, nil
	}

	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := connectWithRetry(ctx, poolCfg, cfg.ConnectRetries, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to postgres",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.String("application_name", poolCfg.ConnConfig.RuntimeParams["application_name"]),
		zap.Int32("max_conns", poolCfg.MaxConns))
	return &Postgres{Pool: pool}, nil
}

func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	// a DSN-supplied application_name wins
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok && cfg.ApplicationName != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}
	return poolCfg, nil
}

func connectWithRetry(ctx context.Context, poolCfg *pgxpool.Config, retries int, logger *zap.Logger) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Warn("postgres not reachable; retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", retries),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg.Copy())
		if err != nil {
			return nil, err
		}
		if lastErr = pool.Ping(ctx); lastErr == nil {
			return pool, nil
		}
		pool.Close()
	}
	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", retries+1, lastErr)
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping is the readiness check for the user store.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return ErrPostgresNotConfigured
	}
	return p.Pool.Ping(ctx)
}

// PoolHandle returns the pool, or nil when Postgres is not configured.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}
