package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"narrative-navigator/internal/modules/narrative/domain"
	"narrative-navigator/internal/modules/narrative/usecase"
	"narrative-navigator/internal/modules/shared/infrastructure/cache"
)

// NarrativeUseCase ハンドラーが使うユースケースのインターフェース
type NarrativeUseCase interface {
	Analyze(ctx context.Context, text string) (*usecase.AnalyzeResult, error)
	Enhance(ctx context.Context, req usecase.EnhanceRequest) (*usecase.EnhanceResult, error)
	Run(ctx context.Context, id string) (*domain.EnhancementRun, error)
	RecentRuns(ctx context.Context, limit int) ([]*domain.EnhancementRun, error)
	MaxLength() int
	AuditEnabled() bool
}

// NarrativeHandler 文章解析・改善のハンドラー
type NarrativeHandler struct {
	useCase      NarrativeUseCase
	cacheRepo    domain.CacheRepository
	cacheTTL     time.Duration
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewNarrativeHandler 新しいNarrativeHandlerを作成（cacheRepoがnilならキャッシュしない）
func NewNarrativeHandler(
	useCase NarrativeUseCase,
	cacheRepo domain.CacheRepository,
	cacheTTL time.Duration,
	maxBodyBytes int64,
) *NarrativeHandler {
	return &NarrativeHandler{
		useCase:      useCase,
		cacheRepo:    cacheRepo,
		cacheTTL:     cacheTTL,
		maxBodyBytes: maxBodyBytes,
		logger:       slog.Default(),
	}
}

// HandleAnalyze 一貫性の解析
func (h *NarrativeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		h.sendError(w, "Field 'text' is required.", http.StatusBadRequest)
		return
	}

	h.serveCached(w, r, "analyze", req, true, func(ctx context.Context) (interface{}, error) {
		result, err := h.useCase.Analyze(ctx, *req.Text)
		if err != nil {
			return nil, err
		}
		return NewAnalyzeResponse(*req.Text, result), nil
	})
}

// HandleEnhance 一貫性の修正・反復の除去・文体変換
func (h *NarrativeHandler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EnhanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		h.sendError(w, "Field 'text' is required.", http.StatusBadRequest)
		return
	}

	// 監査ログを保存する場合は毎回実行して記録する
	cacheable := !h.useCase.AuditEnabled()
	h.serveCached(w, r, "enhance", req, cacheable, func(ctx context.Context) (interface{}, error) {
		result, err := h.useCase.Enhance(ctx, usecase.EnhanceRequest{
			Text:  *req.Text,
			Style: domain.Style(req.Style),
			Level: domain.Level(req.EnhancementLevel),
		})
		if err != nil {
			return nil, err
		}
		return NewEnhanceResponse(result), nil
	})
}

// HandleRuns 監査ログの取得（?id= で1件、?limit= で最近の一覧）
func (h *NarrativeHandler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()

	if id := query.Get("id"); id != "" {
		run, err := h.useCase.Run(ctx, id)
		if err != nil {
			h.sendUseCaseError(w, r, err)
			return
		}
		h.sendJSON(w, NewRunResponse(run), http.StatusOK)
		return
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.sendError(w, "Query parameter 'limit' must be a non-negative integer.", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.useCase.RecentRuns(ctx, limit)
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}

	response := RunsResponse{Runs: make([]RunResponse, 0, len(runs))}
	for _, run := range runs {
		response.Runs = append(response.Runs, NewRunResponse(run))
	}
	h.sendJSON(w, response, http.StatusOK)
}

// decode リクエスト本文を読み込んでJSONとして解釈する。失敗時はレスポンスを書いてfalseを返す
func (h *NarrativeHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.sendError(w, "Request body too large.", http.StatusRequestEntityTooLarge)
			return false
		}
		h.sendError(w, "Failed to read request body.", http.StatusBadRequest)
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		h.sendError(w, "Invalid JSON body.", http.StatusBadRequest)
		return false
	}
	return true
}

// serveCached キャッシュがあれば返し、なければ計算して保存する。キャッシュのエラーはリクエストを失敗させない
func (h *NarrativeHandler) serveCached(
	w http.ResponseWriter,
	r *http.Request,
	endpoint string,
	req interface{},
	cacheable bool,
	compute func(ctx context.Context) (interface{}, error),
) {
	ctx := r.Context()
	useCache := cacheable && h.cacheRepo != nil

	// キャッシュキーの生成
	var cacheKey string
	if useCache {
		canonical, err := json.Marshal(req)
		if err != nil {
			useCache = false
		} else {
			cacheKey = cache.Key(endpoint, canonical)
		}
	}

	// Redisキャッシュチェック
	if useCache {
		if cached, err := h.cacheRepo.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			w.Header().Set("X-Cache", "HIT")
			h.sendRaw(w, cached, http.StatusOK)
			return
		}
	}

	response, err := compute(ctx)
	if err != nil {
		h.sendUseCaseError(w, r, err)
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode response", slog.String("error", err.Error()))
		h.sendError(w, "Internal server error.", http.StatusInternalServerError)
		return
	}

	if useCache {
		if err := h.cacheRepo.Set(ctx, cacheKey, data, h.cacheTTL); err != nil {
			h.logger.WarnContext(ctx, "failed to store cached response", slog.String("error", err.Error()))
		}
		w.Header().Set("X-Cache", "MISS")
	}
	h.sendRaw(w, data, http.StatusOK)
}

// sendUseCaseError ユースケースのエラーをHTTPステータスに変換
func (h *NarrativeHandler) sendUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		h.sendError(w, "Text must not be empty.", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInputTooLarge):
		h.sendError(w, fmt.Sprintf("Text exceeds maximum length (%d characters).", h.useCase.MaxLength()), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidStyle):
		h.sendError(w, "Invalid style. Allowed values: "+joinStyles()+".", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidLevel):
		h.sendError(w, "Invalid enhancement_level. Allowed values: light, moderate, heavy.", http.StatusBadRequest)
	case errors.Is(err, domain.ErrRunNotFound):
		h.sendError(w, "Run not found.", http.StatusNotFound)
	case errors.Is(err, domain.ErrAnnotationUnavailable):
		h.logger.ErrorContext(r.Context(), "annotation unavailable", slog.String("error", err.Error()))
		h.sendError(w, "Annotation engine unavailable.", http.StatusServiceUnavailable)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		h.sendError(w, "Internal server error.", http.StatusInternalServerError)
	}
}

func joinStyles() string {
	names := make([]string, len(domain.Styles))
	for i, s := range domain.Styles {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// sendJSON JSONレスポンスを送信
func (h *NarrativeHandler) sendJSON(w http.ResponseWriter, v interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *NarrativeHandler) sendRaw(w http.ResponseWriter, data []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

// sendError エラーレスポンスを送信
func (h *NarrativeHandler) sendError(w http.ResponseWriter, detail string, statusCode int) {
	h.sendJSON(w, ErrorResponse{Detail: detail}, statusCode)
}
