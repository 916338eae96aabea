package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_pipeline.go -package=mocks product-sync/internal/indexer ProductFetcher,CollectionLoader

import (
	"context"
	"fmt"
	"time"

	"product-sync/internal/contextutil"
	"product-sync/internal/enricher"
	"product-sync/internal/shopify"
)

// ProductFetcher returns the full product catalog.
type ProductFetcher interface {
	FetchAll(ctx context.Context) ([]shopify.Product, error)
}

// ProductEnricher converts raw products into documents.
type ProductEnricher interface {
	EnrichAll(products []shopify.Product) ([]enricher.Document, error)
}

// CollectionLoader replaces the contents of the vector collection.
type CollectionLoader interface {
	Reload(ctx context.Context, docs []enricher.Document) (int, error)
}

// Result summarises one pipeline run.
type Result struct {
	Fetched  int
	Loaded   int
	Duration time.Duration
}

// Pipeline runs fetch → enrich → load as one sequential unit. It does not
// serialise callers; the sync service holds the single-writer lock.
type Pipeline struct {
	fetcher  ProductFetcher
	enricher ProductEnricher
	loader   CollectionLoader
}

// NewPipeline creates a new sync pipeline.
func NewPipeline(fetcher ProductFetcher, enricher ProductEnricher, loader CollectionLoader) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		enricher: enricher,
		loader:   loader,
	}
}

// Run executes one full sync. Any stage error aborts the run and is returned.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	products, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch products: %w", err)
	}
	logger.InfoContext(ctx, "products fetched", "count", len(products))

	docs, err := p.enricher.EnrichAll(products)
	if err != nil {
		return Result{Fetched: len(products)}, fmt.Errorf("failed to enrich products: %w", err)
	}

	loaded, err := p.loader.Reload(ctx, docs)
	if err != nil {
		return Result{Fetched: len(products), Loaded: loaded}, fmt.Errorf("failed to load vector store: %w", err)
	}

	result := Result{
		Fetched:  len(products),
		Loaded:   loaded,
		Duration: time.Since(start),
	}
	logger.InfoContext(ctx, "sync pipeline completed", "fetched", result.Fetched, "loaded", result.Loaded, "duration", result.Duration)
	return result, nil
}
