package calculator

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// UsageStore is implemented by the db package stores.
type UsageStore interface {
	Allow(ctx context.Context, ip string, day time.Time, limit int) (int, bool, error)
}

// Quota limits accepted requests per client and UTC day.
type Quota struct {
	store UsageStore
	limit int
	now   func() time.Time
}

func NewQuota(store UsageStore, limit int) *Quota {
	return &Quota{store: store, limit: limit, now: time.Now}
}

// Allow returns ErrQuotaExceeded once ip used up today's requests.
func (q *Quota) Allow(ctx context.Context, ip string) (int, error) {
	count, ok, err := q.store.Allow(ctx, ip, q.now().UTC(), q.limit)
	if err != nil {
		return 0, err
	}
	if !ok {
		return count, ErrQuotaExceeded
	}
	return count, nil
}

// clientIP is the first X-Forwarded-For entry, else the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
