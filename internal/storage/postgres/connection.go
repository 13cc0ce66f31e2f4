// Package postgres is the alternate CacheStore backend, for deployments
// that already run Postgres instead of embedding SQLite. It connects with
// a bounded retry loop and upserts with INSERT ... ON CONFLICT DO UPDATE.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS geocoding_cache (
    address_lower     TEXT PRIMARY KEY,
    lat               DOUBLE PRECISION NOT NULL,
    lng               DOUBLE PRECISION NOT NULL,
    formatted_address TEXT NOT NULL,
    accuracy          TEXT NOT NULL,
    method            TEXT NOT NULL,
    cached_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS distance_cache (
    origin_lat     DOUBLE PRECISION NOT NULL,
    origin_lng     DOUBLE PRECISION NOT NULL,
    dest_lat       DOUBLE PRECISION NOT NULL,
    dest_lng       DOUBLE PRECISION NOT NULL,
    distance_km    DOUBLE PRECISION NOT NULL,
    duration_hours DOUBLE PRECISION NOT NULL,
    cached_at      TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (origin_lat, origin_lng, dest_lat, dest_lng)
);
`

// DB wraps a pooled Postgres connection for the cache tables.
type DB struct {
	db  *sql.DB
	log logger.Logger
}

// Open connects to Postgres with a bounded retry loop, then applies the
// cache schema.
func Open(ctx context.Context, dsn string, log logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Noop{}
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	const maxRetries = 10
	var pingErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pingErr = sqlDB.PingContext(ctx)
		if pingErr == nil {
			break
		}
		log.Warn("postgres not reachable, retrying", "attempt", attempt, "max", maxRetries, "err", pingErr)
		select {
		case <-ctx.Done():
			sqlDB.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if pingErr != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("postgres not reachable after %d attempts: %w", maxRetries, pingErr)
	}

	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}

	log.Info("connected to postgres cache store")
	return &DB{db: sqlDB, log: log}, nil
}

// Conn exposes the pooled connection for repository methods.
func (d *DB) Conn() *sql.DB { return d.db }

// Close releases the underlying connection pool.
func (d *DB) Close() error { return d.db.Close() }
