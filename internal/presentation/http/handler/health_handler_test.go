package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		annotator      ReadinessChecker
		wantStatusCode int
		wantAnnotator  string
	}{
		{
			name:           "正常系: モデル読み込み済み",
			method:         http.MethodGet,
			annotator:      readiness(true),
			wantStatusCode: http.StatusOK,
			wantAnnotator:  "ready",
		},
		{
			name:           "正常系: モデル未読み込み",
			method:         http.MethodGet,
			annotator:      readiness(false),
			wantStatusCode: http.StatusOK,
			wantAnnotator:  "cold",
		},
		{
			name:           "境界値: アノテーターなし",
			method:         http.MethodGet,
			wantStatusCode: http.StatusOK,
			wantAnnotator:  "cold",
		},
		{
			name:           "異常系: POSTは許可しない",
			method:         http.MethodPost,
			annotator:      readiness(true),
			wantStatusCode: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.annotator)
			req := httptest.NewRequest(tt.method, "/health", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantStatusCode)
			}
			if tt.wantAnnotator == "" {
				return
			}

			var response HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Status != "ok" {
				t.Errorf("status = %s, want ok", response.Status)
			}
			if response.Annotator != tt.wantAnnotator {
				t.Errorf("annotator = %s, want %s", response.Annotator, tt.wantAnnotator)
			}
		})
	}
}
