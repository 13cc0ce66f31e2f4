// Package sqlite is the default CacheStore backend: an embedded schema, a
// pooled *sql.DB with WAL mode, and repository methods built on prepared
// statements.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

//go:embed schema.sql
var schemaFS embed.FS

// DB wraps a pooled SQLite connection used by both cache repositories.
type DB struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	log    logger.Logger
}

// ConnectionConfig configures connection pooling, trimmed to what a cache
// table needs (no backups, no timezone conversion: cache timestamps are
// compared as UTC instants).
type ConnectionConfig struct {
	DBPath          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns sensible pooling defaults for a
// low-write, read-mostly cache database.
func DefaultConnectionConfig(dbPath string) ConnectionConfig {
	return ConnectionConfig{
		DBPath:          dbPath,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// Open creates and initializes a pooled SQLite connection, applying the
// embedded schema inside a transaction.
func Open(config ConnectionConfig, log logger.Logger) (*DB, error) {
	if config.DBPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if log == nil {
		log = logger.Noop{}
	}

	if dir := filepath.Dir(config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	connectionString := config.DBPath +
		"?_foreign_keys=on" +
		"&_journal_mode=WAL" +
		"&_synchronous=NORMAL" +
		"&_cache_size=10000" +
		"&_timeout=5000"

	sqlDB, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	d := &DB{db: sqlDB, dbPath: config.DBPath, log: log}
	if err := d.initialize(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Info("opened sqlite cache store", "path", config.DBPath)
	return d, nil
}

func (d *DB) initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return tx.Commit()
}

// Conn exposes the pooled connection for repository methods.
func (d *DB) Conn() *sql.DB { return d.db }

// WithTransaction runs fn inside a transaction, rolling back automatically
// on error or panic.
func (d *DB) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Close releases the underlying connection pool.
func (d *DB) Close() error { return d.db.Close() }
