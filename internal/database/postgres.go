package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/config"
)

// pingTimeout bounds the startup connectivity check so a wedged database
// fails fast instead of hanging the boot sequence.
const pingTimeout = 5 * time.Second

// NewPostgresPool creates and validates the PostgreSQL pool backing the
// notification inbox and its read markers. The pool is small by default:
// the gateway's only writes are notification inserts and read upserts.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns
	// Delta checks come in bursts around poll ticks; let idle connections
	// drain between them.
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Int32("max_conns", cfg.MaxDBConns).
		Msg("notification store connected")

	return pool, nil
}
