package handlers

import (
	"net/http"

	"product-sync/internal/contextutil"
)

// RootMessage is reported by the root endpoint while the service is up.
const RootMessage = "Shopify-Qdrant sync service is running"

// Root reports that the process is serving requests. It checks no dependencies.
func Root(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := writeJSON(w, http.StatusOK, StatusResponse{Status: "healthy", Message: RootMessage}); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
