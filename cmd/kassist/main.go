// Command kassist is a local knowledge assistant.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/kassist/internal/adapters/driven/ai"
	"github.com/custodia-labs/kassist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kassist/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kassist/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/kassist/internal/adapters/driving/cli"
	"github.com/custodia-labs/kassist/internal/core/services"
	"github.com/custodia-labs/kassist/internal/logger"
	"github.com/custodia-labs/kassist/internal/normalisers"
	"github.com/custodia-labs/kassist/internal/postprocessors/chunker"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap builds every store and service once for the running command.
func bootstrap(opts cli.Options) (*cli.Services, func(), error) {
	configDir, err := file.DefaultConfigDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve config directory: %w", err)
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = settings.DataDir
	}
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	logger.Debug("Data directory: %s", dataDir)

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open metadata store: %w", err)
	}

	indexStore, err := flat.NewStore(filepath.Join(dataDir, "index"))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open vector index: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open prompts: %w", err)
	}

	aiServices := ai.Init(settings)
	for _, warning := range aiServices.Warnings {
		logger.Warn("%s", warning)
	}

	docStore := store.DocumentStore()

	ingestService := services.NewIngestService(
		chunker.New(),
		aiServices.EmbeddingService,
		docStore,
		indexStore,
	)
	documentService := services.NewDocumentService(docStore, normalisers.NewDefaultRegistry(), ingestService)

	answerService := services.NewAnswerService(
		aiServices.EmbeddingService,
		aiServices.LLMService,
		docStore,
		indexStore,
		store.QuestionLogStore(),
	)
	answerService.SetPromptStore(prompts)
	answerService.SetTopK(settings.Retrieval.TopK)
	answerService.SetGenerationTimeout(time.Duration(settings.LLM.TimeoutSeconds) * time.Second)

	cleanup := func() {
		aiServices.Close()
		if err := store.Close(); err != nil {
			logger.Warn("close metadata store: %v", err)
		}
	}

	return &cli.Services{
		Document: documentService,
		Answer:   answerService,
		Index:    services.NewIndexService(aiServices.EmbeddingService, docStore, indexStore),
		History:  services.NewHistoryService(store.QuestionLogStore()),
		Settings: settingsService,
	}, cleanup, nil
}
