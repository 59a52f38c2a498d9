package main

// @title           Lexcraft Core API
// @version         1.0
// @description     Retrieval-augmented drafting API for legal documents. Lexcraft Core ingests reference material, indexes it for semantic search and grounds generated drafts in the retrieved passages.

// @contact.name   Lexcraft OSS
// @contact.url    https://github.com/lexcraft-labs/lexcraft-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/ai"
	"github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/extract"
	"github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/postgres"
	postgresqueue "github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/queue/redis"
	"github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/vectorstore/chromem"
	"github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/vectorstore/fallback"
	"github.com/lexcraft-labs/lexcraft-core/internal/adapters/driven/vectorstore/qdrant"
	"github.com/lexcraft-labs/lexcraft-core/internal/adapters/driving/http"
	"github.com/lexcraft-labs/lexcraft-core/internal/chunker"
	"github.com/lexcraft-labs/lexcraft-core/internal/config"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/services"
	"github.com/lexcraft-labs/lexcraft-core/internal/runtime"
	"github.com/lexcraft-labs/lexcraft-core/internal/worker"
)

var version = "dev"

func main() {
	// Run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(getEnv("LOG_LEVEL", "info")),
	}))
	slog.SetDefault(logger)

	logger.Info("lexcraft-core starting", "version", version, "mode", mode)

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// ===== PostgreSQL =====
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleSec) * time.Second,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		logger.Error("failed to initialise schema", "error", err)
		os.Exit(1)
	}
	logger.Info("postgresql connected")

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		logger.Info("redis connected")
	}

	// ===== Vector store =====
	var vectorStore driven.VectorStore
	switch cfg.VectorStore.Backend {
	case "chromem":
		store, err := chromem.New(chromem.Config{
			Path:       cfg.VectorStore.Path,
			Collection: cfg.VectorStore.Collection,
		})
		if err != nil {
			logger.Error("failed to open chromem store", "error", err)
			os.Exit(1)
		}
		vectorStore = store
		logger.Info("using chromem vector store", "path", cfg.VectorStore.Path)
	case "qdrant":
		vectorStore = qdrant.New(qdrant.Config{
			URL:        cfg.VectorStore.QdrantURL,
			APIKey:     cfg.VectorStore.QdrantAPIKey,
			Collection: cfg.VectorStore.Collection,
		})
		logger.Info("using qdrant vector store", "url", cfg.VectorStore.QdrantURL)
	default:
		store, err := chromem.New(chromem.Config{Collection: cfg.VectorStore.Collection})
		if err != nil {
			logger.Error("failed to open in-memory vector store", "error", err)
			os.Exit(1)
		}
		vectorStore = store
		logger.Warn("no vector store backend configured, using in-memory chromem")
	}

	// ===== Stores =====
	encryptionKey := postgres.DeriveKey(cfg.Secrets.EncryptionPassphrase, []byte(cfg.Secrets.EncryptionSalt))
	encryptor, err := postgres.NewSecretEncryptor(encryptionKey)
	if err != nil {
		logger.Error("failed to create settings encryptor", "error", err)
		os.Exit(1)
	}
	sourceStore := postgres.NewSourceStore(db)
	settingsStore := postgres.NewSettingsStore(db, encryptor)

	// ===== Task queue (Redis if available, otherwise PostgreSQL) =====
	var taskQueue driven.TaskQueue
	queueBackend := "postgres"
	if redisClient != nil {
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			logger.Error("failed to create task queue", "error", err)
			os.Exit(1)
		}
		queueBackend = "redis"
	} else {
		taskQueue = postgresqueue.NewQueue(db.DB)
	}
	logger.Info("task queue ready", "backend", queueBackend)

	// ===== Runtime registry and AI bootstrap =====
	runtimeConfig := domain.NewRuntimeConfig(cfg.VectorStore.Backend, queueBackend)
	runtimeConfig.SetVectorStoreAvailable(vectorStore != nil)
	runtimeServices := runtime.NewServices(runtimeConfig)
	aiFactory := ai.NewFactory()

	bootstrapAI(ctx, cfg, settingsStore, aiFactory, runtimeServices, logger)

	// Qdrant needs the collection created with the embedding dimension
	if qdrantStore, ok := vectorStore.(*qdrant.Store); ok {
		if embedding := runtimeServices.EmbeddingService(); embedding != nil {
			if err := qdrantStore.EnsureCollection(ctx, embedding.Dimensions()); err != nil {
				logger.Warn("failed to ensure qdrant collection", "error", err)
			}
		}
	}

	// ===== Core services =====
	pipelineSettings := cfg.PipelineSettings()

	textChunker, err := chunker.New(chunker.Config{
		Size:    pipelineSettings.ChunkSize,
		Overlap: pipelineSettings.ChunkOverlap,
	})
	if err != nil {
		logger.Error("invalid chunker configuration", "error", err)
		os.Exit(1)
	}

	extractors := extract.DefaultRegistry()

	ingestionService := services.NewIngestionService(services.IngestionConfig{
		Chunker:     textChunker,
		Store:       vectorStore,
		SourceStore: sourceStore,
		Extractors:  extractors,
		Services:    runtimeServices,
		Settings:    pipelineSettings,
		Logger:      logger,
	})

	retrievalService := services.NewRetrievalService(services.RetrievalConfig{
		Store:    vectorStore,
		Fallback: fallback.New(),
		Services: runtimeServices,
		Settings: pipelineSettings,
		Logger:   logger,
	})

	generationService := services.NewGenerationService(services.GenerationConfig{
		Retrieval: retrievalService,
		Assembler: services.NewContextAssembler(pipelineSettings),
		Services:  runtimeServices,
		Settings:  pipelineSettings,
		Logger:    logger,
	})

	settingsService := services.NewSettingsService(settingsStore, aiFactory, runtimeServices, logger)

	logger.Info("runtime capabilities",
		"vector_store", runtimeConfig.VectorStoreBackend,
		"embedding", runtimeConfig.EmbeddingAvailable(),
		"llm", runtimeConfig.LLMAvailable(),
	)

	runWorker := func() {
		w := worker.New(worker.Config{
			TaskQueue:      taskQueue,
			Ingestion:      ingestionService,
			Extractors:     extractors,
			Logger:         logger,
			Concurrency:    cfg.Worker.Concurrency,
			DequeueTimeout: cfg.Worker.DequeueTimeout,
		})
		if err := w.Start(ctx); err != nil {
			logger.Error("failed to start worker", "error", err)
			os.Exit(1)
		}
		logger.Info("worker started")
		<-ctx.Done()
		w.Stop()
	}

	runAPI := func() {
		server := http.NewServer(http.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			Version:        version,
			AuthSecret:     cfg.Server.AuthSecret,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger,
		}, http.Services{
			Retrieval:  retrievalService,
			Ingestion:  ingestionService,
			Generation: generationService,
			Settings:   settingsService,
		}, taskQueue, db, redisPinger(redisClient))

		if err := server.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	switch mode {
	case "api":
		runAPI()
	case "worker":
		runWorker()
	case "all":
		go runWorker()
		runAPI()
	default:
		logger.Error("unknown mode", "mode", mode)
		os.Exit(1)
	}
}

// bootstrapAI applies saved AI settings, falling back to the bootstrap
// configuration. Failures degrade instead of aborting startup.
func bootstrapAI(
	ctx context.Context,
	cfg config.Config,
	settingsStore driven.SettingsStore,
	aiFactory driven.AIServiceFactory,
	runtimeServices *runtime.Services,
	logger *slog.Logger,
) {
	embedding := domain.EmbeddingSettings{
		Provider: domain.AIProvider(cfg.AI.Embedding.Provider),
		Model:    cfg.AI.Embedding.Model,
		APIKey:   cfg.AI.Embedding.APIKey,
		BaseURL:  cfg.AI.Embedding.BaseURL,
	}
	llm := domain.LLMSettings{
		Provider: domain.AIProvider(cfg.AI.LLM.Provider),
		Model:    cfg.AI.LLM.Model,
		APIKey:   cfg.AI.LLM.APIKey,
		BaseURL:  cfg.AI.LLM.BaseURL,
	}

	// Settings saved through the API win over the bootstrap config
	if saved, err := settingsStore.GetAISettings(ctx); err == nil && saved != nil {
		if saved.Embedding.IsConfigured() {
			embedding = saved.Embedding
		}
		if saved.LLM.IsConfigured() {
			llm = saved.LLM
		}
	}

	if svc, err := aiFactory.CreateEmbeddingService(&embedding); err != nil {
		logger.Warn("embedding service unavailable", "error", err)
	} else if svc != nil {
		if err := runtimeServices.ValidateAndSetEmbedding(ctx, svc); err != nil {
			logger.Warn("embedding health check failed, running degraded", "error", err)
		}
	}

	if svc, err := aiFactory.CreateLLMService(&llm); err != nil {
		logger.Warn("llm service unavailable", "error", err)
	} else if svc != nil {
		if err := runtimeServices.ValidateAndSetLLM(ctx, svc); err != nil {
			logger.Warn("llm health check failed, running degraded", "error", err)
		}
	}
}

// redisPinger adapts a possibly nil redis client to the health interface.
func redisPinger(client *redis.Client) http.Pinger {
	if client == nil {
		return nil
	}
	return pingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
