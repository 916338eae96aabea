package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"product-sync/internal/handlers"
	"product-sync/internal/service"
	"product-sync/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	SyncService    service.SyncService
	VectorStore    vectorstore.VectorStore
	CollectionName string
	SyncAPIKey     string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", handlers.Root)
	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.VectorStore, deps.SyncService, deps.CollectionName))

	r.Group(func(r chi.Router) {
		r.Use(APIKey(deps.SyncAPIKey))
		r.Method(http.MethodPost, "/sync-products", handlers.NewSyncHandler(deps.SyncService))
		r.Method(http.MethodGet, "/sync-runs", handlers.NewRunsHandler(deps.SyncService))
	})

	return r
}
