package usecase

import (
	"math"
	"strings"

	"narrative-navigator/internal/modules/narrative/domain"
)

const (
	issuePenalty      = 12
	tenseDriftPenalty = 10
)

// OverallScore 100から問題1件につき12、時制の揺れがあればさらに10を引いた値（0〜100）
func OverallScore(issues []domain.Issue) int {
	score := 100 - len(issues)*issuePenalty
	if domain.CountKind(issues, domain.IssueTense) > 0 {
		score -= tenseDriftPenalty
	}
	return max(0, min(100, score))
}

// ReadabilityScore 語数に基づく読みやすさ（50〜100、小数1桁）。空白のみならnil
func ReadabilityScore(text string) *float64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	score := math.Max(50, 100-0.5*float64(len(strings.Fields(text))))
	score = math.Round(score*10) / 10
	return &score
}
