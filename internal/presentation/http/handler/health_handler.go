package handler

import (
	"encoding/json"
	"net/http"
)

// ReadinessChecker アノテーションエンジンの準備状態
type ReadinessChecker interface {
	Ready() bool
}

// HealthHandler ヘルスチェックのハンドラー
type HealthHandler struct {
	annotator ReadinessChecker
}

// NewHealthHandler 新しいHealthHandlerを作成
func NewHealthHandler(annotator ReadinessChecker) *HealthHandler {
	return &HealthHandler{annotator: annotator}
}

// HealthResponse ヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string `json:"status"`
	Annotator string `json:"annotator"`
}

// ServeHTTP ヘルスチェックを処理（モデル未読み込みでもサービスは利用可能なので200を返す）
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Method not allowed"})
		return
	}

	annotator := "cold"
	if h.annotator != nil && h.annotator.Ready() {
		annotator = "ready"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Annotator: annotator})
}
