package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/eb4890/thechoiceswemake/internal/storage"
)

// Settings keys for daily quota tracking.
const (
	SettingCurrentDate  = "current_date"
	SettingCurrentCount = "current_count"
	SettingDailyLimit   = "daily_limit"
)

const dateLayout = "2006-01-02"

// QuotaService tracks the global daily cap on generation calls. The cap
// is deployment-wide, not per user; see the open-questions section of
// DESIGN.md before changing that.
//
// The usage counter is a read-modify-write without a lock. Concurrent
// sessions can over- or under-count by one in rare interleavings; that
// approximation is accepted by design rather than serializing every
// session on one counter.
type QuotaService struct {
	store        storage.Store
	cache        Cache
	logger       *slog.Logger
	ttl          time.Duration
	defaultLimit int

	// now is injectable for rollover tests.
	now func() time.Time
}

func NewQuotaService(store storage.Store, cache Cache, ttl time.Duration, defaultLimit int, logger *slog.Logger) *QuotaService {
	return &QuotaService{
		store:        store,
		cache:        cache,
		logger:       logger,
		ttl:          ttl,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// SetClock overrides the wall clock. Test hook.
func (q *QuotaService) SetClock(now func() time.Time) { q.now = now }

// GetSetting reads a setting with a short-lived cache in front; settings
// are read far more often than written. A missing row yields the
// default.
func (q *QuotaService) GetSetting(ctx context.Context, key, def string) (string, error) {
	if v, ok, err := q.cache.Get(ctx, cacheKey(key)); err == nil && ok {
		return v, nil
	}

	v, err := q.store.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return def, nil
		}
		return def, err
	}

	if err := q.cache.Set(ctx, cacheKey(key), v, q.ttl); err != nil {
		q.logger.Warn("Failed to cache setting", "key", key, "error", err)
	}
	return v, nil
}

// SetSetting upserts a setting and drops any cached copy.
func (q *QuotaService) SetSetting(ctx context.Context, key, value string) error {
	if err := q.store.SetSetting(ctx, key, value); err != nil {
		return err
	}
	if err := q.cache.Del(ctx, cacheKey(key)); err != nil {
		q.logger.Warn("Failed to invalidate cached setting", "key", key, "error", err)
	}
	return nil
}

// resetDailyIfNeeded performs the lazy, read-triggered rollover: when
// the stored date no longer matches the process-local calendar date, the
// date is set to today and the count to zero. There is no background
// scheduler; this runs before every usage read or increment so an idle
// day can never skip the reset.
func (q *QuotaService) resetDailyIfNeeded(ctx context.Context) error {
	today := q.now().Format(dateLayout)

	// Read the date from the store directly: a stale cached date could
	// trigger a second reset within the same day.
	stored, err := q.store.GetSetting(ctx, SettingCurrentDate)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read quota date: %w", err)
	}
	if stored == today {
		return nil
	}

	if err := q.store.SetSetting(ctx, SettingCurrentDate, today); err != nil {
		return fmt.Errorf("failed to roll quota date: %w", err)
	}
	if err := q.store.SetSetting(ctx, SettingCurrentCount, "0"); err != nil {
		return fmt.Errorf("failed to reset quota count: %w", err)
	}
	q.logger.Info("Daily quota reset", "date", today)
	return nil
}

// Usage returns today's generation call count. Live counter: always read
// from the store, never the TTL cache.
func (q *QuotaService) Usage(ctx context.Context) (int, error) {
	if err := q.resetDailyIfNeeded(ctx); err != nil {
		return 0, err
	}
	raw, err := q.store.GetSetting(ctx, SettingCurrentCount)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("malformed quota count %q: %w", raw, err)
	}
	return n, nil
}

// IncrementUsage adds one to today's count.
func (q *QuotaService) IncrementUsage(ctx context.Context) error {
	current, err := q.Usage(ctx)
	if err != nil {
		return err
	}
	return q.store.SetSetting(ctx, SettingCurrentCount, strconv.Itoa(current+1))
}

// DailyLimit returns the configured global cap, falling back to the
// deployment default when the settings row is absent or malformed.
func (q *QuotaService) DailyLimit(ctx context.Context) int {
	raw, err := q.GetSetting(ctx, SettingDailyLimit, strconv.Itoa(q.defaultLimit))
	if err != nil {
		return q.defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return q.defaultLimit
	}
	return n
}

func cacheKey(key string) string {
	return "setting:" + key
}
