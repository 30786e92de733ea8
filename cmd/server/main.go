package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rupai/finagents/internal/agent"
	"github.com/rupai/finagents/internal/llm"
	"github.com/rupai/finagents/internal/orchestrator"
	"github.com/rupai/finagents/internal/server"
	"github.com/rupai/finagents/internal/storage"
	"github.com/rupai/finagents/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the text-generation collaborator
	generator := llm.NewOpenAIGenerator(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)

	// Initialize analyzers and orchestration
	analyzers := []agent.Analyzer{
		agent.NewDebtAnalyzer(generator, logger),
		agent.NewSavingsStrategy(generator, cfg.Analysis.EmergencyFundMonths, logger),
		agent.NewBudgetOptimizer(generator, logger),
	}
	router := orchestrator.NewRouter(cfg.Analysis.RouterDebtThreshold, cfg.Analysis.RouterSavingsRate)
	orch := orchestrator.New(store, router, analyzers, logger)

	// Start the HTTP server
	srv := server.New(orch, store, cfg.Server.RequestTimeout, logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting server", zap.String("addr", addr))
	if err := srv.Start(addr); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
