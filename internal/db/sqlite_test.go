package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAllowDailyQuota(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)

	for want := 1; want <= 3; want++ {
		count, ok, err := s.Allow(ctx, "10.0.0.1", day, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, count)
	}

	count, ok, err := s.Allow(ctx, "10.0.0.1", day, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, count)

	_, ok, err = s.Allow(ctx, "10.0.0.2", day, 3)
	require.NoError(t, err)
	assert.True(t, ok, "counted per client")

	_, ok, err = s.Allow(ctx, "10.0.0.1", day.Add(time.Hour), 3)
	require.NoError(t, err)
	assert.True(t, ok, "a new UTC day starts a new count")
}

func TestAllowConcurrent(t *testing.T) {
	s := openMemory(t)
	day := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.Allow(context.Background(), "10.0.0.9", day, 3)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, accepted)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	store, err := Open(context.Background(), "sqlite:"+path)
	require.NoError(t, err)
	_, ok, err := store.Allow(context.Background(), "ip", time.Now(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Close())

	_, err = Open(context.Background(), "mysql://nope")
	assert.Error(t, err)
	_, err = OpenSQLite(context.Background(), " ")
	assert.Error(t, err)
}
