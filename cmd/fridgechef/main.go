package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/amosley/fridgechef/internal/chef"
	"github.com/amosley/fridgechef/internal/config"
	"github.com/amosley/fridgechef/internal/db"
	"github.com/amosley/fridgechef/internal/detect/yolo"
	"github.com/amosley/fridgechef/internal/generate"
	"github.com/amosley/fridgechef/internal/generate/claude"
	"github.com/amosley/fridgechef/internal/generate/ollama"
	"github.com/amosley/fridgechef/internal/inventory"
	"github.com/amosley/fridgechef/internal/inventory/jsonfile"
	"github.com/amosley/fridgechef/internal/logging"
	"github.com/amosley/fridgechef/internal/store"
	"github.com/amosley/fridgechef/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	persister, err := newPersister(cfg, database)
	if err != nil {
		return err
	}

	inv := inventory.NewStore(persister, logger)
	if err := inv.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	detector := yolo.NewClient(cfg.DetectURL, cfg.RequestTimeout, cfg.HealthTimeout, cfg.MaxRetries, cfg.RetryBackoff)

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	orchestrator := chef.New(
		detector,
		generator,
		inv,
		store.NewRecipeStore(database),
		cfg.HistoryWindow,
		cfg.HistoryMaxTurns,
		logger,
	)

	server := web.NewServer(orchestrator, logger)
	logger.Info("fridgechef started",
		"addr", cfg.ListenAddr,
		"detect_url", cfg.DetectURL,
		"generate_backend", cfg.GenerateBackend,
		"inventory_backend", cfg.InventoryBackend,
	)
	return server.ListenAndServe(cfg.ListenAddr)
}

// newPersister picks the inventory backend: the sqlite store shares the main
// database, the jsonfile store keeps a single human-readable document.
func newPersister(cfg *config.Config, database *sql.DB) (inventory.Persister, error) {
	switch cfg.InventoryBackend {
	case "sqlite":
		return store.NewInventoryStore(database), nil
	case "file":
		p, err := jsonfile.New(cfg.InventoryPath)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown INVENTORY_BACKEND %q (want sqlite or file)", cfg.InventoryBackend)
	}
}

// newGenerator picks the recipe-generation backend from configuration.
func newGenerator(cfg *config.Config) (generate.Generator, error) {
	switch cfg.GenerateBackend {
	case "ollama":
		return ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel, cfg.RequestTimeout, cfg.HealthTimeout, cfg.MaxRetries, cfg.RetryBackoff), nil
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, fmt.Errorf("CLAUDE_API_KEY is required when GENERATE_BACKEND=claude")
		}
		return claude.NewClient(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.MaxRetries, cfg.RetryBackoff), nil
	default:
		return nil, fmt.Errorf("unknown GENERATE_BACKEND %q (want ollama or claude)", cfg.GenerateBackend)
	}
}
