package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dealscope/backend/config"
	httpDelivery "github.com/dealscope/backend/internal/delivery/http"
	"github.com/dealscope/backend/internal/domain"
	"github.com/dealscope/backend/internal/infrastructure/adapter"
	"github.com/dealscope/backend/internal/infrastructure/cache"
	"github.com/dealscope/backend/internal/infrastructure/history"
	"github.com/dealscope/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting DealScope Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	resultCache := cache.NewResultCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	registry := adapter.NewRegistry()
	for _, src := range cfg.Sources {
		if !src.Enabled {
			log.Printf("Source %s disabled, skipping", src.ID)
			continue
		}
		client := adapter.NewClient(adapter.Config{
			ID:            src.ID,
			Name:          src.Name,
			BaseURL:       src.BaseURL,
			APIKey:        src.APIKey,
			PageSize:      cfg.Aggregation.PageSize,
			RatePerSecond: src.RatePerSecond,
			Burst:         src.Burst,
		})
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
		}
		registry.Register(client)
		if src.APIKey == "" {
			log.Printf("WARNING: source %s has no api_key configured", src.ID)
		}
	}
	log.Printf("Sources configured: %v", registry.IDs())
	if len(registry.IDs()) == 0 {
		log.Printf("WARNING: no sources enabled - every search will return empty results")
	}

	var historySource domain.HistorySource
	if cfg.History.BaseURL != "" {
		historySource = history.NewClient(cfg.History.BaseURL, cfg.History.APIKey)
		log.Printf("Price history source: %s", cfg.History.BaseURL)
	} else {
		log.Printf("Price history source not configured")
	}

	// Initialize usecase layer
	aggregator := usecase.NewAggregator(
		registry,
		resultCache,
		historySource,
		usecase.AggregatorConfig{
			Deadline:       cfg.Aggregation.Deadline,
			CacheTTL:       cfg.Cache.TTL,
			SourceCooldown: cfg.RateLimit.SourceCooldown,
			Matching: usecase.MatcherConfig{
				JaccardThreshold:    cfg.Matching.JaccardThreshold,
				EnableFuzzyMatching: cfg.Matching.EnableFuzzyMatching,
				FuzzyEditDistance:   cfg.Matching.FuzzyEditDistance,
				EnableDebugLogging:  cfg.Matching.EnableDebugLogging,
			},
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Matching: jaccard=%.2f, fuzzy=%v, debug=%v",
		cfg.Matching.JaccardThreshold,
		cfg.Matching.EnableFuzzyMatching,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(aggregator)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
