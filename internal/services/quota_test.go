package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb4890/thechoiceswemake/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestQuota(t *testing.T) (*QuotaService, *storage.MockStore, *time.Time) {
	t.Helper()
	store := storage.NewMockStore()
	q := NewQuotaService(store, NewMockCache(), 10*time.Second, 150, testLogger())

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	clock := &now
	q.SetClock(func() time.Time { return *clock })
	return q, store, clock
}

func TestQuotaRolloverIdempotent(t *testing.T) {
	q, store, clock := newTestQuota(t)
	ctx := context.Background()

	// Seed yesterday's state.
	require.NoError(t, store.SetSetting(ctx, SettingCurrentDate, "2026-02-28"))
	require.NoError(t, store.SetSetting(ctx, SettingCurrentCount, "42"))

	// First access of the new day resets exactly once.
	used, err := q.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, used)
	assert.Equal(t, "2026-03-01", store.Settings[SettingCurrentDate])

	// Same-day accesses never reset again.
	require.NoError(t, q.IncrementUsage(ctx))
	require.NoError(t, q.IncrementUsage(ctx))
	for i := 0; i < 5; i++ {
		used, err = q.Usage(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, used)

	// Crossing the day boundary resets exactly once on first access.
	*clock = clock.Add(24 * time.Hour)
	used, err = q.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, used)
	assert.Equal(t, "2026-03-02", store.Settings[SettingCurrentDate])
}

func TestQuotaIncrement(t *testing.T) {
	q, store, _ := newTestQuota(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.IncrementUsage(ctx))
		used, err := q.Usage(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, used)
	}
	assert.Equal(t, "3", store.Settings[SettingCurrentCount])
}

func TestDailyLimit(t *testing.T) {
	q, store, _ := newTestQuota(t)
	ctx := context.Background()

	// Absent row falls back to the deployment default.
	assert.Equal(t, 150, q.DailyLimit(ctx))

	require.NoError(t, store.SetSetting(ctx, SettingDailyLimit, "25"))
	assert.Equal(t, 25, q.DailyLimit(ctx))

	// Malformed value degrades to the default rather than failing.
	require.NoError(t, q.SetSetting(ctx, SettingDailyLimit, "not-a-number"))
	assert.Equal(t, 150, q.DailyLimit(ctx))
}

func TestGetSettingUsesCacheWithinTTL(t *testing.T) {
	store := storage.NewMockStore()
	cache := NewMockCache()
	q := NewQuotaService(store, cache, 10*time.Second, 150, testLogger())

	ctx := context.Background()
	require.NoError(t, store.SetSetting(ctx, "daily_limit", "100"))

	v, err := q.GetSetting(ctx, "daily_limit", "0")
	require.NoError(t, err)
	assert.Equal(t, "100", v)

	// A direct store write without invalidation is not observed until
	// the TTL lapses; the cache is explicitly allowed to be up to TTL
	// stale for settings.
	store.Settings["daily_limit"] = "999"
	v, err = q.GetSetting(ctx, "daily_limit", "0")
	require.NoError(t, err)
	assert.Equal(t, "100", v)

	// SetSetting invalidates, so the new value is visible immediately.
	require.NoError(t, q.SetSetting(ctx, "daily_limit", "200"))
	v, err = q.GetSetting(ctx, "daily_limit", "0")
	require.NoError(t, err)
	assert.Equal(t, "200", v)
}

func TestGetSettingDefault(t *testing.T) {
	q, _, _ := newTestQuota(t)
	v, err := q.GetSetting(context.Background(), "missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
}
