package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"narrative-navigator/internal/config"
	"narrative-navigator/internal/presentation/di"
)

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return NewRouter(container)
}

func TestNewRouter(t *testing.T) {
	router := newTestRouter(t, config.DefaultConfig())
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Endpoints(t *testing.T) {
	router := newTestRouter(t, config.DefaultConfig())

	// アノテーションモデルを読み込まずに済むリクエストのみ
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		wantBody       string
	}{
		{
			name:           "正常系: GET /health",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
			wantBody:       `"annotator":"cold"`,
		},
		{
			name:           "異常系: 空の本文",
			method:         http.MethodPost,
			path:           "/api/analyze",
			body:           `{"text":""}`,
			expectedStatus: http.StatusBadRequest,
			wantBody:       `"detail":"Text must not be empty."`,
		},
		{
			name:           "異常系: 上限超過",
			method:         http.MethodPost,
			path:           "/api/enhance",
			body:           `{"text":"` + strings.Repeat("a", 20001) + `"}`,
			expectedStatus: http.StatusBadRequest,
			wantBody:       `"detail":"Text exceeds maximum length (20000 characters)."`,
		},
		{
			name:           "境界値: 空白のみは解析できる",
			method:         http.MethodPost,
			path:           "/api/analyze",
			body:           `{"text":"   "}`,
			expectedStatus: http.StatusOK,
			wantBody:       `"overall_score":100`,
		},
		{
			name:           "異常系: 不正なJSON",
			method:         http.MethodPost,
			path:           "/api/enhance",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: GET /api/analyze",
			method:         http.MethodGet,
			path:           "/api/analyze",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "正常系: 監査ログ無効時の一覧は空",
			method:         http.MethodGet,
			path:           "/api/runs",
			expectedStatus: http.StatusOK,
			wantBody:       `{"runs":[]}`,
		},
		{
			name:           "異常系: 監査ログ無効時のID指定",
			method:         http.MethodGet,
			path:           "/api/runs?id=unknown",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "異常系: 存在しないパス",
			method:         http.MethodGet,
			path:           "/api/unknown",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d (body %s)", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %s does not contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, config.DefaultConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/enhance", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimit.RequestsPerSecond = 0.001
	cfg.RateLimit.Burst = 1
	router := newTestRouter(t, cfg)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":""}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [400 429]", codes)
	}
}

func TestRouter_AnalyzeWithModel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping model load in short mode")
	}
	router := newTestRouter(t, config.DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":"It was cold. The wind blew."}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d (body %s)", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	for _, key := range []string{"overall_score", "consistency_issues", "tense_consistency", "readability_score"} {
		if _, ok := response[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
}
