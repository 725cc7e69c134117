package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb4890/thechoiceswemake/internal/storage"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

func newTestCatalog(t *testing.T) (*CatalogService, *storage.MockStore) {
	t.Helper()
	store := storage.NewMockStore()
	return NewCatalogService(store, NewMockCache(), 10*time.Second, testLogger()), store
}

func TestCategoriesFallback(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	// Empty table degrades to the default vocabulary.
	assert.Equal(t, scenario.DefaultCategories, catalog.Categories(ctx))

	// Store failure degrades the same way, never hard-fails.
	store.CategoriesErr = errors.New("connection refused")
	assert.Equal(t, scenario.DefaultCategories, catalog.Categories(ctx))
}

func TestCategoriesPrefixed(t *testing.T) {
	catalog, store := newTestCatalog(t)
	store.Categories = []string{"Choices", "Alignment"}

	got := catalog.Categories(context.Background())
	require.NotEmpty(t, got)
	assert.Equal(t, scenario.DefaultCategory, got[0])
	assert.Equal(t, []string{"Uncategorized", "Alignment", "Choices"}, got)
}

func TestLoadScenariosVisibilityAndDragon(t *testing.T) {
	catalog, store := newTestCatalog(t)
	now := time.Now()
	future := now.Add(48 * time.Hour)

	store.AddScenario(scenario.Scenario{
		Title: "Trolley", Description: "Five lives, one lever.",
		Prompt: "You are the narrator.", Category: "Choices",
		SubmittedAt: now.Add(-2 * time.Hour),
	})
	embargoedID := store.AddScenario(scenario.Scenario{
		Title: "Sealed Letter", Description: "Not yet.",
		Prompt: "p", Category: "Choices",
		ReleaseDate: &future, SubmittedAt: now.Add(-1 * time.Hour),
	})

	got, order, err := catalog.LoadScenarios(context.Background(), now)
	require.NoError(t, err)

	// Embargoed entry is absent; dragon is injected last.
	assert.Contains(t, got, "Trolley")
	assert.NotContains(t, got, "Sealed Letter")
	require.Contains(t, got, scenario.DragonTitle)
	assert.Equal(t, scenario.DragonTitle, order[len(order)-1])
	assert.Contains(t, got[scenario.DragonTitle].Prompt, "Five lives, one lever.")

	// Releasing early makes it visible immediately, regardless of the
	// original embargo date.
	require.NoError(t, store.ReleaseScenarioEarly(context.Background(), embargoedID))
	got, _, err = catalog.LoadScenarios(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Contains(t, got, "Sealed Letter")

	// The dragon's list now includes the released entry but never
	// itself.
	assert.Contains(t, got[scenario.DragonTitle].Prompt, "Sealed Letter")
	assert.NotContains(t, got[scenario.DragonTitle].Prompt, "- **"+scenario.DragonTitle+"**")
}

func TestIncrementPlaysSkipsDragon(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	id := store.AddScenario(scenario.Scenario{Title: "Trolley", Prompt: "p"})

	catalog.IncrementPlays(ctx, "Trolley")
	catalog.IncrementPlays(ctx, scenario.DragonTitle)

	assert.Equal(t, 1, store.Catalog[id].Plays)
	// No stored row gained a play from the meta-scenario.
	total := 0
	for _, s := range store.Catalog {
		total += s.Plays
	}
	assert.Equal(t, 1, total)
}
