package indexer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	"product-sync/internal/embedding"
	"product-sync/internal/enricher"
	"product-sync/internal/vectorstore"
	vectorstore_mocks "product-sync/internal/vectorstore/mocks"
)

// memStore is an in-memory VectorStore used to observe collection state.
type memStore struct {
	mu          sync.Mutex
	collections map[string]map[string]vectorstore.Point
	sizes       map[string]int
	upserts     []int
}

func newMemStore() *memStore {
	return &memStore{
		collections: make(map[string]map[string]vectorstore.Point),
		sizes:       make(map[string]int),
	}
}

func (m *memStore) ListCollections(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	return names, nil
}

func (m *memStore) DeleteCollection(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, collection)
	delete(m.sizes, collection)
	return nil
}

func (m *memStore) CreateCollection(ctx context.Context, collection string, vectorSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; ok {
		return fmt.Errorf("collection %q already exists", collection)
	}
	m.collections[collection] = make(map[string]vectorstore.Point)
	m.sizes[collection] = vectorSize
	return nil
}

func (m *memStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q not found", collection)
	}
	for _, p := range points {
		if len(p.Vec) != m.sizes[collection] {
			return fmt.Errorf("vector size %d does not match %d", len(p.Vec), m.sizes[collection])
		}
		c[p.ID] = p
	}
	m.upserts = append(m.upserts, len(points))
	return nil
}

func (m *memStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.collections[collection]
	return ok, nil
}

func (m *memStore) GetCollectionInfo(ctx context.Context, collection string) (*vectorstore.CollectionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q not found", collection)
	}
	return &vectorstore.CollectionInfo{VectorSize: m.sizes[collection], PointsCount: len(c), Status: "Green"}, nil
}

func makeDocuments(n int) []enricher.Document {
	docs := make([]enricher.Document, n)
	for i := range docs {
		title := fmt.Sprintf("Product %d", i)
		docs[i] = enricher.Document{
			ID:        enricher.Slugify(title),
			Title:     title,
			Price:     float64(i),
			Category:  "unclassified",
			Tier:      "unranked",
			VariantID: int64(i),
		}
	}
	return docs
}

// stubEmbedder returns a fixed number of vectors regardless of input.
type stubEmbedder struct {
	dim   int
	count int
	err   error
}

func (s *stubEmbedder) Dimension() int { return s.dim }

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, s.count)
	for i := range out {
		out[i] = make([]float32, s.dim)
	}
	return out, nil
}

func TestLoader_Reload_Batches(t *testing.T) {
	store := newMemStore()
	loader := NewLoader(store, embedding.NewSeededEmbedder(8, 1, 2), "products")

	docs := makeDocuments(250)
	loaded, err := loader.Reload(context.Background(), docs)
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if loaded != 250 {
		t.Errorf("Reload() loaded = %d, want 250", loaded)
	}
	if want := []int{100, 100, 50}; !slices.Equal(store.upserts, want) {
		t.Errorf("upsert batch sizes = %v, want %v", store.upserts, want)
	}

	info, err := store.GetCollectionInfo(context.Background(), "products")
	if err != nil {
		t.Fatalf("GetCollectionInfo() error = %v", err)
	}
	if info.PointsCount != 250 {
		t.Errorf("PointsCount = %d, want 250", info.PointsCount)
	}
	if info.VectorSize != 8 {
		t.Errorf("VectorSize = %d, want 8", info.VectorSize)
	}
}

func TestLoader_Reload_ReplacesPreviousContents(t *testing.T) {
	store := newMemStore()
	loader := NewLoader(store, embedding.NewSeededEmbedder(4, 1, 2), "products")
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		if _, err := loader.Reload(ctx, makeDocuments(30)); err != nil {
			t.Fatalf("Reload() run %d error = %v", run, err)
		}
	}

	info, _ := store.GetCollectionInfo(ctx, "products")
	if info.PointsCount != 30 {
		t.Errorf("PointsCount after two reloads = %d, want 30", info.PointsCount)
	}

	if _, err := loader.Reload(ctx, makeDocuments(5)); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	info, _ = store.GetCollectionInfo(ctx, "products")
	if info.PointsCount != 5 {
		t.Errorf("PointsCount after shrinking reload = %d, want 5", info.PointsCount)
	}
}

func TestLoader_Reload_PayloadAndIDs(t *testing.T) {
	store := newMemStore()
	loader := NewLoader(store, embedding.NewSeededEmbedder(4, 1, 2), "products")

	docs := makeDocuments(3)
	if _, err := loader.Reload(context.Background(), docs); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	slugs := make(map[string]bool)
	for id, p := range store.collections["products"] {
		if id == p.Meta["id"] {
			t.Errorf("point id %q should not equal the document slug", id)
		}
		if len(id) != 36 {
			t.Errorf("point id %q is not a UUID", id)
		}
		slugs[p.Meta["id"].(string)] = true
	}
	for _, doc := range docs {
		if !slugs[doc.ID] {
			t.Errorf("payload for %q not found", doc.ID)
		}
	}
}

func TestLoader_Reload_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		mockStore.EXPECT().ListCollections(ctx).Return([]string{"other", "products"}, nil),
		mockStore.EXPECT().DeleteCollection(ctx, "products").Return(nil),
		mockStore.EXPECT().CreateCollection(ctx, "products", 16).Return(nil),
	)
	mockStore.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	loader := NewLoader(mockStore, embedding.NewRandomEmbedder(16), "products")
	loaded, err := loader.Reload(ctx, nil)
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if loaded != 0 {
		t.Errorf("Reload() loaded = %d, want 0", loaded)
	}
}

func TestLoader_Reload_SkipsDeleteWhenMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	ctx := context.Background()

	mockStore.EXPECT().ListCollections(ctx).Return([]string{"other"}, nil)
	mockStore.EXPECT().DeleteCollection(gomock.Any(), gomock.Any()).Times(0)
	mockStore.EXPECT().CreateCollection(ctx, "products", 4).Return(nil)
	mockStore.EXPECT().Upsert(ctx, "products", gomock.Len(2)).Return(nil)

	loader := NewLoader(mockStore, embedding.NewRandomEmbedder(4), "products")
	if _, err := loader.Reload(ctx, makeDocuments(2)); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
}

func TestLoader_Reload_Errors(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name       string
		setup      func(m *vectorstore_mocks.MockVectorStore)
		embedder   embedding.Embedder
		docs       int
		wantLoaded int
		wantBoom   bool
	}{
		{
			name: "list collections fails",
			setup: func(m *vectorstore_mocks.MockVectorStore) {
				m.EXPECT().ListCollections(gomock.Any()).Return(nil, errBoom)
			},
			embedder: embedding.NewRandomEmbedder(4),
			docs:     1,
			wantBoom: true,
		},
		{
			name: "create collection fails",
			setup: func(m *vectorstore_mocks.MockVectorStore) {
				m.EXPECT().ListCollections(gomock.Any()).Return(nil, nil)
				m.EXPECT().CreateCollection(gomock.Any(), "products", 4).Return(errBoom)
			},
			embedder: embedding.NewRandomEmbedder(4),
			docs:     1,
			wantBoom: true,
		},
		{
			name: "embedding fails",
			setup: func(m *vectorstore_mocks.MockVectorStore) {
				m.EXPECT().ListCollections(gomock.Any()).Return(nil, nil)
				m.EXPECT().CreateCollection(gomock.Any(), "products", 4).Return(nil)
			},
			embedder: &stubEmbedder{dim: 4, err: errBoom},
			docs:     1,
			wantBoom: true,
		},
		{
			name: "embedding count mismatch",
			setup: func(m *vectorstore_mocks.MockVectorStore) {
				m.EXPECT().ListCollections(gomock.Any()).Return(nil, nil)
				m.EXPECT().CreateCollection(gomock.Any(), "products", 4).Return(nil)
			},
			embedder: &stubEmbedder{dim: 4, count: 1},
			docs:     3,
		},
		{
			name: "second upsert fails",
			setup: func(m *vectorstore_mocks.MockVectorStore) {
				m.EXPECT().ListCollections(gomock.Any()).Return(nil, nil)
				m.EXPECT().CreateCollection(gomock.Any(), "products", 4).Return(nil)
				gomock.InOrder(
					m.EXPECT().Upsert(gomock.Any(), "products", gomock.Len(100)).Return(nil),
					m.EXPECT().Upsert(gomock.Any(), "products", gomock.Len(20)).Return(errBoom),
				)
			},
			embedder:   embedding.NewRandomEmbedder(4),
			docs:       120,
			wantLoaded: 100,
			wantBoom:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)
			tt.setup(mockStore)

			loader := NewLoader(mockStore, tt.embedder, "products")
			loaded, err := loader.Reload(context.Background(), makeDocuments(tt.docs))
			if err == nil {
				t.Fatal("Reload() expected error, got nil")
			}
			if tt.wantBoom && !errors.Is(err, errBoom) {
				t.Errorf("Reload() error = %v, want wrapped %v", err, errBoom)
			}
			if loaded != tt.wantLoaded {
				t.Errorf("Reload() loaded = %d, want %d", loaded, tt.wantLoaded)
			}
		})
	}
}
