package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks product-sync/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with its payload.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// CollectionInfo contains information about a collection.
type CollectionInfo struct {
	VectorSize  int
	PointsCount int
	Status      string
}

// VectorStore defines the collection and point operations the sync needs.
type VectorStore interface {
	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection drops a collection and all of its points.
	DeleteCollection(ctx context.Context, collection string) error

	// CreateCollection creates a collection with cosine distance and the given vector size.
	CreateCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or updates points and returns once the store has acknowledged them.
	Upsert(ctx context.Context, collection string, points []Point) error

	// CollectionExists reports whether a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// GetCollectionInfo returns vector size, point count and status of a collection.
	GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)
}
