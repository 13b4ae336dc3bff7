package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corpusqa/internal/config"
	"corpusqa/internal/http"
	"corpusqa/internal/ingest"
	"corpusqa/internal/llm"
	"corpusqa/internal/rag"
	"corpusqa/internal/storage"
	"corpusqa/internal/tenant"
	"corpusqa/internal/vectorstore"
	"corpusqa/internal/watcher"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	manager := tenant.NewManager(
		storage.NewTenantRepo(db),
		storage.NewSegmentRepo(db),
		vectorStore,
		cfg.VectorSize,
	)
	slog.Info("Tenant manager initialized", "vector_size", cfg.VectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.VectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.VectorSize)

	// Create ingestion pipeline
	pipeline := ingest.NewPipeline(manager, embedder)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create question answering engine
	conversations := storage.NewConversationRepo(db)
	engine := rag.NewEngine(embedder, manager, llmClient, conversations)
	slog.Info("Answer engine initialized")

	// Watch the inbox directory for dropped documents when configured
	if cfg.InboxPath != "" {
		w, err := watcher.New(cfg.InboxPath, manager, pipeline)
		if err != nil {
			log.Fatalf("Failed to start inbox watcher: %v", err)
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Inbox watcher stopped", "error", err)
			}
		}()
		slog.Info("Inbox watcher started", "path", cfg.InboxPath)
	}

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		DB:            db,
		Vectors:       vectorStore,
		Tenants:       manager,
		Pipeline:      pipeline,
		Engine:        engine,
		Conversations: conversations,
	})

	server := &nethttp.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
