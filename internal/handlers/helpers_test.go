package handlers

import (
	"log/slog"
	"os"
	"time"

	"github.com/eb4890/thechoiceswemake/internal/services"
	"github.com/eb4890/thechoiceswemake/internal/storage"
)

// testLogger keeps handler noise out of test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type testEnv struct {
	store   *storage.MockStore
	cache   *services.MockCache
	llm     *services.MockLLM
	quota   *services.QuotaService
	gateway *services.Gateway
	catalog *services.CatalogService
}

func newTestEnv() *testEnv {
	logger := testLogger()
	store := storage.NewMockStore()
	cache := services.NewMockCache()
	llm := services.NewMockLLM()
	quota := services.NewQuotaService(store, cache, 10*time.Second, 150, logger)
	return &testEnv{
		store:   store,
		cache:   cache,
		llm:     llm,
		quota:   quota,
		gateway: services.NewGateway(llm, quota, 5*time.Second, logger),
		catalog: services.NewCatalogService(store, cache, 10*time.Second, logger),
	}
}
