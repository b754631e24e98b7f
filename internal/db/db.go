package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageStore counts accepted calculation requests per client and day.
type UsageStore interface {
	// Allow records one request for ip on day unless limit requests were
	// already accepted. It returns the count after the call.
	Allow(ctx context.Context, ip string, day time.Time, limit int) (int, bool, error)
	Close() error
}

// Open connects to a postgres:// or postgresql:// URL, or opens a sqlite:
// path (sqlite::memory: for a private in-memory database), and migrates it.
func Open(ctx context.Context, databaseURL string) (UsageStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		db, err := New(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return db, nil
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite:"))
	default:
		return nil, fmt.Errorf("unsupported database url scheme")
	}
}

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// RunMigrations runs database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS daily_usage (
			ip_address TEXT NOT NULL,
			date DATE NOT NULL,
			request_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (ip_address, date)
		);
	`)
	return err
}

// utcDay truncates t to its UTC calendar day.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
