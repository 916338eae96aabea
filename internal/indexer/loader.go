package indexer

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"product-sync/internal/contextutil"
	"product-sync/internal/embedding"
	"product-sync/internal/enricher"
	"product-sync/internal/vectorstore"
)

// BatchSize is the number of documents embedded, and points upserted, per call.
const BatchSize = 100

// Loader rebuilds the product collection from scratch.
type Loader struct {
	store      vectorstore.VectorStore
	embedder   embedding.Embedder
	collection string
	batchSize  int
	newID      func() string
}

// NewLoader creates a Loader writing to collection.
func NewLoader(store vectorstore.VectorStore, embedder embedding.Embedder, collection string) *Loader {
	return &Loader{
		store:      store,
		embedder:   embedder,
		collection: collection,
		batchSize:  BatchSize,
		newID:      func() string { return uuid.New().String() },
	}
}

// Reload drops the collection if it exists, recreates it with the embedder's
// dimension and cosine distance, then embeds and upserts every document.
// Point ids are fresh UUIDs on every run, unrelated to the document slug.
// Nothing is rolled back on failure: the collection may be left empty or
// partially populated.
func (l *Loader) Reload(ctx context.Context, docs []enricher.Document) (int, error) {
	logger := contextutil.LoggerFromContext(ctx).With("collection", l.collection)

	if err := l.resetCollection(ctx); err != nil {
		return 0, err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.EmbeddingText()
	}

	points := make([]vectorstore.Point, 0, len(docs))
	for start := 0; start < len(texts); start += l.batchSize {
		end := min(start+l.batchSize, len(texts))

		vectors, err := l.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return 0, fmt.Errorf("failed to generate embeddings for documents %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != end-start {
			return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(vectors))
		}

		for j, vec := range vectors {
			doc := docs[start+j]
			points = append(points, vectorstore.Point{
				ID:   l.newID(),
				Vec:  vec,
				Meta: doc.Payload(),
			})
		}
		logger.DebugContext(ctx, "embedded batch", "start", start, "size", end-start)
	}

	loaded := 0
	for batch := range slices.Chunk(points, l.batchSize) {
		if err := l.store.Upsert(ctx, l.collection, batch); err != nil {
			return loaded, fmt.Errorf("failed to upsert points %d-%d: %w", loaded, loaded+len(batch)-1, err)
		}
		loaded += len(batch)
		logger.DebugContext(ctx, "uploaded batch", "uploaded", loaded, "total", len(points))
	}

	logger.InfoContext(ctx, "collection reloaded", "points", loaded)
	return loaded, nil
}

// resetCollection deletes the collection if present and creates it empty.
func (l *Loader) resetCollection(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	collections, err := l.store.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if slices.Contains(collections, l.collection) {
		logger.InfoContext(ctx, "dropping existing collection", "collection", l.collection)
		if err := l.store.DeleteCollection(ctx, l.collection); err != nil {
			return fmt.Errorf("failed to delete collection %q: %w", l.collection, err)
		}
	}

	if err := l.store.CreateCollection(ctx, l.collection, l.embedder.Dimension()); err != nil {
		return fmt.Errorf("failed to create collection %q: %w", l.collection, err)
	}
	return nil
}
