package handler

import (
	"time"
	"unicode/utf8"

	"narrative-navigator/internal/modules/narrative/domain"
	"narrative-navigator/internal/modules/narrative/usecase"
)

// AnalyzeRequest 解析リクエスト
type AnalyzeRequest struct {
	Text *string `json:"text"`
}

// EnhanceRequest 改善リクエスト
type EnhanceRequest struct {
	Text             *string `json:"text"`
	Style            string  `json:"style,omitempty"`
	EnhancementLevel string  `json:"enhancement_level,omitempty"`
}

// IssueResponse 一貫性問題（start/endはコードポイント単位）
type IssueResponse struct {
	Type       string  `json:"type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Message    string  `json:"message"`
	Original   string  `json:"original,omitempty"`
	Suggestion *string `json:"suggestion,omitempty"`
}

// AnalyzeResponse 解析レスポンス
type AnalyzeResponse struct {
	OverallScore      int             `json:"overall_score"`
	ConsistencyIssues []IssueResponse `json:"consistency_issues"`
	TenseConsistency  bool            `json:"tense_consistency"`
	ReadabilityScore  *float64        `json:"readability_score,omitempty"`
}

// EditLogResponse 編集ログの1行
type EditLogResponse struct {
	Operation string `json:"operation"`
	Original  string `json:"original"`
	Modified  string `json:"modified"`
	Reason    string `json:"reason"`
}

// EnhanceResponse 改善レスポンス
type EnhanceResponse struct {
	EnhancedText string            `json:"enhanced_text"`
	EditLog      []EditLogResponse `json:"edit_log"`
	OverallScore int               `json:"overall_score"`
	RunID        string            `json:"run_id,omitempty"`
}

// RunResponse 保存済みの改善処理
type RunResponse struct {
	ID               string            `json:"id"`
	Style            string            `json:"style"`
	EnhancementLevel string            `json:"enhancement_level"`
	OriginalText     string            `json:"original_text"`
	EnhancedText     string            `json:"enhanced_text"`
	OverallScore     int               `json:"overall_score"`
	CreatedAt        time.Time         `json:"created_at"`
	EditLog          []EditLogResponse `json:"edit_log"`
}

// RunsResponse 最近の改善処理一覧
type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// NewAnalyzeResponse 解析結果をレスポンスに変換（オフセットはバイトからコードポイントに変換）
func NewAnalyzeResponse(text string, result *usecase.AnalyzeResult) AnalyzeResponse {
	conv := newOffsetConverter(text)
	issues := make([]IssueResponse, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, IssueResponse{
			Type:       string(issue.Kind),
			Start:      conv.codePoints(issue.Start),
			End:        conv.codePoints(issue.End),
			Message:    issue.Message,
			Original:   issue.Original,
			Suggestion: issue.Suggestion,
		})
	}

	return AnalyzeResponse{
		OverallScore:      result.OverallScore,
		ConsistencyIssues: issues,
		TenseConsistency:  result.TenseConsistent,
		ReadabilityScore:  result.ReadabilityScore,
	}
}

// NewEnhanceResponse 改善結果をレスポンスに変換
func NewEnhanceResponse(result *usecase.EnhanceResult) EnhanceResponse {
	return EnhanceResponse{
		EnhancedText: result.EnhancedText,
		EditLog:      editLogResponses(result.EditLog),
		OverallScore: result.OverallScore,
		RunID:        result.RunID,
	}
}

// NewRunResponse 監査ログをレスポンスに変換
func NewRunResponse(run *domain.EnhancementRun) RunResponse {
	return RunResponse{
		ID:               run.ID,
		Style:            string(run.Style),
		EnhancementLevel: string(run.Level),
		OriginalText:     run.OriginalText,
		EnhancedText:     run.EnhancedText,
		OverallScore:     run.OverallScore,
		CreatedAt:        run.CreatedAt,
		EditLog:          editLogResponses(run.EditLog),
	}
}

func editLogResponses(entries []domain.EditLogEntry) []EditLogResponse {
	out := make([]EditLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, EditLogResponse{
			Operation: string(entry.Operation),
			Original:  entry.Original,
			Modified:  entry.Modified,
			Reason:    entry.Reason,
		})
	}
	return out
}

// offsetConverter バイトオフセットをコードポイントオフセットに変換する。
// 昇順の問い合わせでは前回の位置から数え直す
type offsetConverter struct {
	text      string
	lastByte  int
	lastPoint int
}

func newOffsetConverter(text string) *offsetConverter {
	return &offsetConverter{text: text}
}

func (c *offsetConverter) codePoints(byteOffset int) int {
	if byteOffset < 0 {
		return 0
	}
	if byteOffset > len(c.text) {
		byteOffset = len(c.text)
	}
	if byteOffset < c.lastByte {
		c.lastByte, c.lastPoint = 0, 0
	}
	c.lastPoint += utf8.RuneCountInString(c.text[c.lastByte:byteOffset])
	c.lastByte = byteOffset
	return c.lastPoint
}
