// Package main wires the ansa application together: configuration,
// AI providers, storage and the services behind the command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ansa/internal/adapters/driven/ai"
	"github.com/custodia-labs/ansa/internal/adapters/driven/cache/disk"
	"github.com/custodia-labs/ansa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ansa/internal/adapters/driven/repository"
	"github.com/custodia-labs/ansa/internal/adapters/driving/cli"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/core/services"
	"github.com/custodia-labs/ansa/internal/logger"
	"github.com/custodia-labs/ansa/internal/postprocessors"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The --verbose flag drops the level to debug before commands run.
	log := logger.New(false)

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}
	if configStore.GetString("log.format") == "json" {
		logger.UseJSON(log)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("failed to open prompt store: %w", err)
	}

	aiServices := ai.Init(*settings, promptStore, log)
	defer aiServices.Close()
	for _, warning := range aiServices.Warnings {
		log.Warn(warning)
	}

	backends, err := repository.Create(ctx, settings.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.WithError(err).Warn("Storage close failed")
		}
	}()

	// The cache outlives a run, so it only fronts backends that do too.
	// Caching the in-memory repository would resurrect documents that
	// were gone when the process restarted.
	var documentCache driven.DocumentCache
	if settings.Storage.Repository.Persistent() {
		cache, err := disk.NewCache(settings.Storage.CacheDir)
		if err != nil {
			log.WithError(err).Warn("Document cache unavailable, reads go to the repository")
		} else {
			documentCache = cache
		}
	}

	documentStore := services.NewDocumentStore(backends.Documents, documentCache, aiServices.EmbeddingService, log)

	pipelineCfg, err := settingsService.GetPipelineConfig()
	if err != nil {
		return fmt.Errorf("failed to load chunking config: %w", err)
	}
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.FromConfig(registry, pipelineCfg)
	if err != nil {
		return fmt.Errorf("failed to build ingest pipeline: %w", err)
	}

	ingestService := services.NewIngestService(
		documentStore,
		pipeline,
		aiServices.EmbeddingService,
		settings.Embedding.BatchSize,
		log,
	)

	orchestrator := services.NewQueryOrchestrator(
		aiServices.EmbeddingService,
		documentStore,
		aiServices.LLMService,
		settings.Query,
		log,
	)
	orchestrator.SetReranker(aiServices.Reranker)
	orchestrator.SetConversationStore(backends.Conversations)
	orchestrator.SetPromptStore(promptStore)

	cli.SetLogger(log)
	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Query:        orchestrator,
		Search:       documentStore,
		Document:     documentStore,
		Ingest:       ingestService,
		Settings:     settingsService,
		Config:       configStore,
		Conversation: backends.Conversations,
	})

	return cli.Execute(ctx)
}
