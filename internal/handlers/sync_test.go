package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"product-sync/internal/service"
	"product-sync/internal/service/mocks"
)

func TestSyncHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		body          string
		mockSetup     func(*mocks.MockSyncService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "successful sync",
			method: http.MethodPost,
			body:   `{"id": 123, "title": "Red Mug"}`,
			mockSetup: func(m *mocks.MockSyncService) {
				m.EXPECT().Sync(gomock.Any()).Return(service.SyncResult{
					RunID:    "run-1",
					Fetched:  750,
					Loaded:   750,
					Duration: 1500 * time.Millisecond,
				}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp SyncResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				want := SyncResponse{
					Status:     "success",
					Message:    "Products synchronized successfully",
					RunID:      "run-1",
					Fetched:    750,
					Loaded:     750,
					DurationMS: 1500,
				}
				if resp != want {
					t.Errorf("response = %+v, want %+v", resp, want)
				}
			},
		},
		{
			name:   "empty body still syncs",
			method: http.MethodPost,
			mockSetup: func(m *mocks.MockSyncService) {
				m.EXPECT().Sync(gomock.Any()).Return(service.SyncResult{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "malformed payload is ignored",
			method: http.MethodPost,
			body:   `{not json`,
			mockSetup: func(m *mocks.MockSyncService) {
				m.EXPECT().Sync(gomock.Any()).Return(service.SyncResult{Fetched: 1, Loaded: 1}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "sync in progress",
			method: http.MethodPost,
			mockSetup: func(m *mocks.MockSyncService) {
				m.EXPECT().Sync(gomock.Any()).Return(service.SyncResult{}, service.ErrSyncInProgress)
			},
			wantStatus: http.StatusConflict,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				if got := w.Header().Get("Retry-After"); got != "60" {
					t.Errorf("Retry-After = %q, want 60", got)
				}
			},
		},
		{
			name:   "sync failure",
			method: http.MethodPost,
			mockSetup: func(m *mocks.MockSyncService) {
				m.EXPECT().Sync(gomock.Any()).Return(service.SyncResult{}, errors.New("failed to load vector store: connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				want := "Failed to sync products: failed to load vector store: connection refused"
				if resp.Error != want {
					t.Errorf("error = %q, want %q", resp.Error, want)
				}
			},
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			mockSetup:  func(m *mocks.MockSyncService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSyncService := mocks.NewMockSyncService(ctrl)
			tt.mockSetup(mockSyncService)

			handler := NewSyncHandler(mockSyncService)

			req := httptest.NewRequest(tt.method, "/sync-products", strings.NewReader(tt.body))
			req.Header.Set("X-Shopify-Topic", "products/update")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestSyncHandler_DetachesFromClientCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSyncService := mocks.NewMockSyncService(ctrl)
	mockSyncService.EXPECT().Sync(gomock.Any()).DoAndReturn(func(ctx context.Context) (service.SyncResult, error) {
		if ctx.Err() != nil {
			t.Errorf("sync context should not be cancelled, got %v", ctx.Err())
		}
		return service.SyncResult{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/sync-products", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	NewSyncHandler(mockSyncService).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ServeHTTP() status = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestRoot(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Root(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Root() status = %v, want %v", w.Code, http.StatusOK)
	}
	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Message != RootMessage {
		t.Errorf("Root() = %+v", resp)
	}
}
