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

	"product-sync/internal/config"
	"product-sync/internal/embedding"
	"product-sync/internal/enricher"
	"product-sync/internal/http"
	"product-sync/internal/indexer"
	"product-sync/internal/llm"
	"product-sync/internal/metadata"
	"product-sync/internal/service"
	"product-sync/internal/shopify"
	"product-sync/internal/storage"
	"product-sync/internal/vectorstore"
)

const (
	// shutdownTimeout is how long an in-flight sync may keep running after a
	// termination signal.
	shutdownTimeout = 2 * time.Minute
	// shopifyRequestTimeout bounds each page request so a hung upstream
	// cannot hold the sync lock indefinitely.
	shopifyRequestTimeout = 60 * time.Second
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	// A broken mapping file is a deployment error; refuse to start.
	meta, err := metadata.Load(cfg.MetadataFile)
	if err != nil {
		log.Fatalf("Failed to load product metadata: %v", err)
	}
	slog.Info("Product metadata loaded", "path", cfg.MetadataFile, "entries", meta.Len())

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
	runRepo := storage.NewRunRepo(db)
	if n, err := runRepo.MarkInterrupted(ctx); err != nil {
		slog.Warn("Failed to close out interrupted sync runs", "error", err)
	} else if n > 0 {
		slog.Warn("Previous sync runs did not finish; the collection may be incomplete", "runs", n)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	embedder := newEmbedder(ctx, cfg)
	slog.Info("Embedder ready", "provider", cfg.EmbeddingProvider, "dimension", embedder.Dimension())

	fetcher := shopify.NewClient(
		cfg.ShopifyStore,
		cfg.ShopifyAPIVersion,
		cfg.ShopifyAccessToken,
		shopify.WithErrorPolicy(shopify.ErrorPolicy(cfg.FetchErrorPolicy)),
		shopify.WithHTTPClient(&nethttp.Client{Timeout: shopifyRequestTimeout}),
	)

	pipeline := indexer.NewPipeline(
		fetcher,
		enricher.New(meta),
		indexer.NewLoader(vectorStore, embedder, cfg.QdrantCollection),
	)
	syncService := service.NewSyncService(pipeline, runRepo)

	router := http.NewRouter(&http.Deps{
		SyncService:    syncService,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
		SyncAPIKey:     cfg.SyncAPIKey,
	})

	// No write timeout: the sync webhook responds only after the full reload.
	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr, "collection", cfg.QdrantCollection, "store", cfg.ShopifyStore)
		errs <- srv.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown did not complete", "error", err)
		}
	case err := <-errs:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}
}

// newEmbedder builds the configured embedding provider. The HTTP provider is
// probed once so a dimension mismatch fails at startup rather than mid-sync.
func newEmbedder(ctx context.Context, cfg *config.Config) embedding.Embedder {
	if cfg.EmbeddingProvider != config.EmbeddingProviderOpenAI {
		return embedding.NewRandomEmbedder(cfg.VectorSize)
	}

	client := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	probe, err := client.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(probe) != 1 || len(probe[0]) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d", cfg.VectorSize)
	}
	return client
}
