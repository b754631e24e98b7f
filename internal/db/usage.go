package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// The conditional upsert makes check and increment one statement, so
// concurrent requests from one client cannot overrun the limit.
const allowPostgres = `
	INSERT INTO daily_usage (ip_address, date, request_count) VALUES ($1, $2, 1)
	ON CONFLICT (ip_address, date) DO UPDATE
		SET request_count = daily_usage.request_count + 1
		WHERE daily_usage.request_count < $3
	RETURNING request_count`

func (db *DB) Allow(ctx context.Context, ip string, day time.Time, limit int) (int, bool, error) {
	if limit < 1 {
		return 0, false, nil
	}
	var count int
	err := db.pool.QueryRow(ctx, allowPostgres, ip, utcDay(day), limit).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return limit, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("record usage: %w", err)
	}
	return count, true, nil
}
