package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"product-sync/internal/contextutil"
	"product-sync/internal/service"
	"product-sync/internal/storage"
)

// DefaultRunsLimit is the number of runs returned when no limit is given.
const DefaultRunsLimit = 20

// RunsHandler lists recent sync runs.
type RunsHandler struct {
	syncService service.SyncService
}

// NewRunsHandler creates a new RunsHandler.
func NewRunsHandler(syncService service.SyncService) *RunsHandler {
	return &RunsHandler{syncService: syncService}
}

// RunResponse is one sync run in the runs listing.
type RunResponse struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	StartedAt  string  `json:"started_at"`
	FinishedAt *string `json:"finished_at"`
	Fetched    int     `json:"fetched"`
	Loaded     int     `json:"loaded"`
	Error      string  `json:"error,omitempty"`
}

// RunsResponse wraps the runs listing.
type RunsResponse struct {
	Runs       []RunResponse `json:"runs"`
	InProgress bool          `json:"in_progress"`
}

// ServeHTTP handles GET /sync-runs?limit=N.
func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := DefaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	runs, err := h.syncService.ListRuns(ctx, limit)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, "Validation error: "+validationErr.Error())
			return
		}
		logger.ErrorContext(ctx, "failed to list sync runs", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list sync runs")
		return
	}

	resp := RunsResponse{
		Runs:       make([]RunResponse, 0, len(runs)),
		InProgress: h.syncService.InProgress(),
	}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, toRunResponse(run))
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func toRunResponse(run storage.SyncRun) RunResponse {
	out := RunResponse{
		ID:        run.ID,
		Status:    string(run.Status),
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
		Fetched:   run.Fetched,
		Loaded:    run.Loaded,
		Error:     run.Error,
	}
	if run.FinishedAt != nil {
		finished := run.FinishedAt.UTC().Format(time.RFC3339)
		out.FinishedAt = &finished
	}
	return out
}
