package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"product-sync/internal/contextutil"
	"product-sync/internal/service"
)

// maxWebhookBody bounds how much of a webhook payload is read.
const maxWebhookBody = 1 << 20

// SyncHandler handles the sync webhook.
type SyncHandler struct {
	syncService service.SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncResponse is returned after a successful sync.
type SyncResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	RunID      string `json:"run_id,omitempty"`
	Fetched    int    `json:"fetched"`
	Loaded     int    `json:"loaded"`
	DurationMS int64  `json:"duration_ms"`
}

// ServeHTTP runs a full sync and responds once it has finished.
//
// The payload is informational only: every webhook triggers the same full
// reload whatever it contains. The sync runs on a context detached from the
// client connection, so a webhook sender that gives up does not abort the
// reload halfway through.
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	h.logPayload(ctx, r)

	result, err := h.syncService.Sync(context.WithoutCancel(ctx))
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	resp := SyncResponse{
		Status:     "success",
		Message:    "Products synchronized successfully",
		RunID:      result.RunID,
		Fetched:    result.Fetched,
		Loaded:     result.Loaded,
		DurationMS: result.Duration.Milliseconds(),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// logPayload logs the webhook topic and body. A missing or malformed body
// is not an error.
func (h *SyncHandler) logPayload(ctx context.Context, r *http.Request) {
	logger := contextutil.LoggerFromContext(ctx)

	if r.Body == nil {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.WarnContext(ctx, "failed to read webhook payload", "error", err)
		return
	}
	if len(body) == 0 {
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.WarnContext(ctx, "ignoring malformed webhook payload", "error", err, "bytes", len(body))
		return
	}

	logger.InfoContext(ctx, "received webhook",
		"topic", r.Header.Get("X-Shopify-Topic"),
		"bytes", len(body),
	)
	logger.DebugContext(ctx, "webhook payload", "payload", payload)
}

// handleServiceError maps service errors to HTTP status codes and responses.
func (h *SyncHandler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	if errors.Is(err, service.ErrSyncInProgress) {
		logger.WarnContext(ctx, "sync already in progress")
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusConflict, "Sync already in progress")
		return
	}

	logger.ErrorContext(ctx, "sync failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Failed to sync products: "+err.Error())
}
