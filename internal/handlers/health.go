package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"product-sync/internal/contextutil"
	"product-sync/internal/vectorstore"
)

// SyncStatus reports whether a sync is running.
type SyncStatus interface {
	InProgress() bool
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	syncStatus         SyncStatus
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(vectorStore vectorstore.VectorStore, syncStatus SyncStatus, collectionName string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		syncStatus:         syncStatus,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Number of points in the product collection, when it exists
	PointsCount *int `json:"points_count,omitempty"`

	SyncInProgress bool `json:"sync_in_progress"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP checks the vector store and the product collection.
//
// Returns 200 when the vector store is reachable, even if the collection has
// not been created yet (degraded), and 503 when the vector store is down.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Checks:         make(map[string]string),
		SyncInProgress: h.syncStatus.InProgress(),
	}
	httpStatus := http.StatusOK

	exists, err := h.vectorStore.CollectionExists(checkCtx, h.collectionName)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		response.Checks["vector_store"] = "error"
		response.Issues = append(response.Issues, "vector_store_unavailable")
		response.Status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case !exists:
		logger.WarnContext(ctx, "vector store collection does not exist", "collection", h.collectionName)
		response.Checks["vector_store"] = "ok"
		response.Checks["collection"] = "missing"
		response.Issues = append(response.Issues, "collection_missing")
		response.Status = "degraded"
	default:
		response.Checks["vector_store"] = "ok"
		response.Checks["collection"] = h.checkCollection(checkCtx, logger, &response)
	}

	if err := writeJSON(w, httpStatus, response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

// checkCollection fills in the point count and returns the collection check result.
func (h *HealthHandler) checkCollection(ctx context.Context, logger *slog.Logger, response *HealthResponse) string {
	info, err := h.vectorStore.GetCollectionInfo(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "failed to read collection info", "error", err)
		response.Issues = append(response.Issues, "collection_info_unavailable")
		response.Status = "degraded"
		return "error"
	}
	response.PointsCount = &info.PointsCount
	return "ok"
}
