package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"product-sync/internal/contextutil"
)

// DefaultTimeout bounds every call to Qdrant.
const DefaultTimeout = 30 * time.Second

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client  *qdrant.Client
	timeout time.Duration
}

// endpoint is the gRPC address derived from the configured URL.
type endpoint struct {
	Host   string
	Port   int
	UseTLS bool
}

// parseEndpoint derives the gRPC endpoint from an HTTP URL such as
// "http://localhost:6333" or "https://xyz.cloud.qdrant.io:6333".
// The gRPC port is the HTTP port + 1 (6334 by default); https enables TLS.
func parseEndpoint(urlStr string) (endpoint, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}

	return endpoint{
		Host:   host,
		Port:   port,
		UseTLS: parsedURL.Scheme == "https",
	}, nil
}

// NewQdrantStore creates a new Qdrant vector store client.
// apiKey may be empty for unauthenticated local instances.
func NewQdrantStore(urlStr, apiKey string) (*QdrantStore, error) {
	ep, err := parseEndpoint(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   ep.Host,
		Port:   ep.Port,
		APIKey: apiKey,
		UseTLS: ep.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:  client,
		timeout: DefaultTimeout,
	}, nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *QdrantStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListCollections returns the names of all collections.
func (s *QdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	names, err := s.client.ListCollections(callCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// DeleteCollection drops a collection and all of its points.
func (s *QdrantStore) DeleteCollection(ctx context.Context, collection string) error {
	logger := contextutil.LoggerFromContext(ctx)

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.DeleteCollection(callCtx, collection); err != nil {
		logger.ErrorContext(ctx, "failed to delete collection", "collection", collection, "error", err)
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	logger.InfoContext(ctx, "collection deleted", "collection", collection)
	return nil
}

// CreateCollection creates a collection with cosine distance.
func (s *QdrantStore) CreateCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.client.CreateCollection(callCtx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to create collection", "collection", collection, "error", err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	logger.InfoContext(ctx, "collection created", "collection", collection, "vector_size", vectorSize)
	return nil
}

// Upsert inserts or updates points and waits for Qdrant to apply them.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoint := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
		}

		if len(point.Meta) > 0 {
			qdrantPoint.Payload = qdrant.NewValueMap(point.Meta)
		}

		qdrantPoints = append(qdrantPoints, qdrantPoint)
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.Upsert(callCtx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.client.CollectionExists(callCtx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// GetCollectionInfo returns information about a collection including point count.
func (s *QdrantStore) GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	info, err := s.client.GetCollectionInfo(callCtx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	var vectorSize int
	if config := info.GetConfig(); config != nil && config.GetParams() != nil {
		if vectorsConfig := config.GetParams().GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				vectorSize = int(params.GetSize())
			}
		}
	}

	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	status := "unknown"
	if info.Status != 0 {
		status = info.Status.String()
	}

	return &CollectionInfo{
		VectorSize:  vectorSize,
		PointsCount: pointsCount,
		Status:      status,
	}, nil
}
