package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calloway/matterwatch/internal/config"
	"github.com/calloway/matterwatch/internal/engine"
	"github.com/calloway/matterwatch/internal/features"
	"github.com/calloway/matterwatch/internal/forecast"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/risk"
	"github.com/calloway/matterwatch/internal/service"
	"github.com/calloway/matterwatch/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/matterwatch/matterwatch.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine assembles the analytics engine from validated configuration.
// A configured but unloadable model artifact is not fatal: the engine falls
// back to burn-rate extrapolation and logs why.
func initEngine(store service.Storage) (*engine.AnalyticsEngine, *forecast.Store, error) {
	cfg, err := config.LoadEngineConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	analyzer, err := risk.NewAnalyzer(cfg.Risk)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid risk configuration: %w", err)
	}

	modelStore := forecast.NewStore()
	if cfg.ModelEnabled && cfg.ModelPath != "" {
		if loadErr := modelStore.Load(cfg.ModelPath); loadErr != nil {
			slog.Warn("Forecast model unavailable, using burn-rate extrapolation",
				"path", cfg.ModelPath,
				"error", loadErr)
		}
	}

	orchestrator, err := forecast.NewOrchestrator(
		modelStore,
		forecast.NewExtrapolator(cfg.Forecast.CeilingMultiple),
		cfg.Forecast,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid forecast configuration: %w", err)
	}

	eng := engine.New(store, features.NewExtractor(), analyzer, orchestrator)
	return eng, modelStore, nil
}

// parseStatus maps a status flag value to a filter, or nil when invalid.
func parseStatus(flag string) *model.MatterStatus {
	status := model.MatterStatus(flag)
	if status != model.MatterStatusOpen && status != model.MatterStatusClosed {
		return nil
	}
	return &status
}
