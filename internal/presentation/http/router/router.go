package router

import (
	"net/http"

	"narrative-navigator/internal/presentation/di"
	"narrative-navigator/internal/presentation/http/middleware"
)

// NewRouter 新しいルーターを作成
func NewRouter(container *di.Container) http.Handler {
	mux := http.NewServeMux()

	// Narrative API ハンドラー
	narrativeHandler := container.NarrativeHandler()
	mux.HandleFunc("/api/analyze", narrativeHandler.HandleAnalyze)
	mux.HandleFunc("/api/enhance", narrativeHandler.HandleEnhance)
	mux.HandleFunc("/api/runs", narrativeHandler.HandleRuns)

	// Health check
	mux.Handle("/health", container.HealthHandler())

	// ミドルウェアの適用（外側から CORS → Logger → RateLimit → Recovery）
	cfg := container.Config()
	var h http.Handler = mux
	h = middleware.Recovery(h)
	h = middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)(h)
	h = middleware.LoggerWithHealthCheck(h)
	h = middleware.CORS(cfg.Server.AllowedOrigins)(h)

	return h
}
