package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/eb4890/thechoiceswemake/internal/config"
	"github.com/eb4890/thechoiceswemake/internal/handlers"
	"github.com/eb4890/thechoiceswemake/internal/logger"
	"github.com/eb4890/thechoiceswemake/internal/middleware"
	"github.com/eb4890/thechoiceswemake/internal/services"
	"github.com/eb4890/thechoiceswemake/internal/session"
	"github.com/eb4890/thechoiceswemake/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting The Choices We Make API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"default_model", cfg.DefaultModel)

	var provider services.LLMService
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		provider = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.MaxTokens, cfg.Temperature, log)
		log.Info("Using Anthropic LLM provider")
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Error("OpenAI API key is required when using openai provider")
			os.Exit(1)
		}
		provider = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.MaxTokens, cfg.Temperature, log)
		log.Info("Using OpenAI-compatible LLM provider", "base_url", cfg.OpenAIBaseURL)
	case "offline":
		provider = services.NewOfflineService()
		log.Info("Using offline provider; all narration is canned")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"anthropic", "openai", "offline"})
		os.Exit(1)
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storeCancel()

	store, err := storage.NewPostgresStore(storeCtx, cfg.DatabaseURL, cfg.DBMaxConns, log)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	log.Info("Database connection established")

	cache := services.NewRedisCache(cfg.RedisAddr, log)
	if err := cache.Ping(storeCtx); err != nil {
		// The cache is an optimization; quota and catalog reads fall
		// back to the store when it is down.
		log.Warn("Cache unreachable at startup", "error", err)
	}

	quota := services.NewQuotaService(store, cache, cfg.SettingsTTL, cfg.DefaultDailyLimit, log)
	gateway := services.NewGateway(provider, quota, cfg.GenerationTimeout, log)
	catalog := services.NewCatalogService(store, cache, cfg.SettingsTTL, log)
	registry := session.NewRegistry(session.DefaultIdleTimeout, log)

	if cfg.AdminPasswordHash == "" {
		log.Warn("No admin password hash configured; curation endpoints are disabled")
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, cache, log))

	catalogHandler := handlers.NewCatalogHandler(catalog, log)
	mux.Handle("/v1/scenarios", catalogHandler)
	mux.Handle("/v1/categories", catalogHandler)

	mux.Handle("/v1/scenarios/propose", handlers.NewProposeHandler(store, log))
	mux.Handle("/v1/journeys", handlers.NewJourneysHandler(store, log))
	mux.Handle("/v1/usage", handlers.NewUsageHandler(quota, log))

	playHandler := handlers.NewPlayHandler(registry, catalog, gateway, store, cfg.DefaultModel, log)
	mux.Handle("/v1/play", playHandler)
	mux.Handle("/v1/play/", playHandler)

	curateHandler := handlers.NewCurateHandler(store, cfg.AdminPasswordHash, log)
	mux.Handle("/v1/curate", curateHandler)
	mux.Handle("/v1/curate/", curateHandler)

	handler := middleware.Logger(log, middleware.Recover(log, mux))
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout must outlast the slowest provider call.
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	registry.Close()
	store.Close()
	if err := cache.Close(); err != nil {
		log.Error("Error closing cache connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
