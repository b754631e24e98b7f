package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is the usage store for local runs and tests.
type SQLite struct {
	sqlDB *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS daily_usage (
	ip_address TEXT NOT NULL,
	date TEXT NOT NULL,
	request_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (ip_address, date)
)`

const allowSQLite = `
INSERT INTO daily_usage (ip_address, date, request_count) VALUES (?, ?, 1)
ON CONFLICT (ip_address, date) DO UPDATE
	SET request_count = daily_usage.request_count + 1
	WHERE daily_usage.request_count < ?
RETURNING request_count`

// OpenSQLite opens path, or a private in-memory database for ":memory:".
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	memory := path == ":memory:"
	dsn := path
	if !memory {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLite) Allow(ctx context.Context, ip string, day time.Time, limit int) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if limit < 1 {
		return 0, false, nil
	}
	var count int
	err := s.sqlDB.QueryRowContext(ctx, allowSQLite, ip, utcDay(day).Format(time.DateOnly), limit).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return limit, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("record usage: %w", err)
	}
	return count, true, nil
}
