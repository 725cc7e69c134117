package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/eb4890/thechoiceswemake/internal/storage"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

const categoriesCacheKey = "categories"

// CatalogService loads the public scenario catalog and the category
// vocabulary, degrading gracefully: categories fall back to a fixed
// list, and the synthesized Black Dragon meta-scenario is injected on
// every load rather than persisted.
type CatalogService struct {
	store  storage.Store
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCatalogService(store storage.Store, cache Cache, ttl time.Duration, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Categories returns the controlled vocabulary, always prefixed with
// the synthetic "Uncategorized" entry. A store failure or an empty
// table degrades to the fixed default vocabulary; this read never
// hard-fails a page.
func (c *CatalogService) Categories(ctx context.Context) []string {
	if raw, ok, err := c.cache.Get(ctx, categoriesCacheKey); err == nil && ok {
		var cached []string
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached
		}
	}

	names, err := c.store.ListCategories(ctx)
	if err != nil || len(names) == 0 {
		if err != nil {
			c.logger.Warn("Falling back to default categories", "error", err)
		}
		return scenario.DefaultCategories
	}

	out := append([]string{scenario.DefaultCategory}, names...)
	if data, err := json.Marshal(out); err == nil {
		if err := c.cache.Set(ctx, categoriesCacheKey, data, c.ttl); err != nil {
			c.logger.Warn("Failed to cache categories", "error", err)
		}
	}
	return out
}

// LoadScenarios returns the publicly visible catalog as a title-keyed
// map, plus the display order (most recently submitted first). The
// Black Dragon meta-scenario is synthesized from the visible entries
// and appended last; it has no stored identity.
func (c *CatalogService) LoadScenarios(ctx context.Context, now time.Time) (map[string]scenario.Scenario, []string, error) {
	rows, err := c.store.ListScenarios(ctx, now)
	if err != nil {
		return nil, nil, err
	}

	catalog := make(map[string]scenario.Scenario, len(rows)+1)
	order := make([]string, 0, len(rows)+1)
	for _, s := range rows {
		catalog[s.Title] = s
		order = append(order, s.Title)
	}

	dragon := scenario.BlackDragon(catalog)
	catalog[dragon.Title] = dragon
	order = append(order, dragon.Title)

	return catalog, order, nil
}

// IncrementPlays bumps the stored play counter. The meta-scenario has
// no stored row and is skipped.
func (c *CatalogService) IncrementPlays(ctx context.Context, title string) {
	if title == scenario.DragonTitle {
		return
	}
	if err := c.store.IncrementPlays(ctx, title); err != nil {
		// Display-only counter; losing a bump is not worth failing a
		// session start.
		c.logger.Warn("Failed to increment play count", "title", title, "error", err)
	}
}
