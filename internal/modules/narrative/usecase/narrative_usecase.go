package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"narrative-navigator/internal/modules/narrative/compose"
	"narrative-navigator/internal/modules/narrative/consistency"
	"narrative-navigator/internal/modules/narrative/domain"
	"narrative-navigator/internal/modules/narrative/enhancement"
	"narrative-navigator/internal/modules/narrative/style"
)

// AnalyzeResult 解析結果
type AnalyzeResult struct {
	OverallScore     int
	Issues           []domain.Issue
	TenseConsistent  bool
	ReadabilityScore *float64
	// Characters 本文に現れた人名（小文字化、出現順）。問題の判定には使わない
	Characters []string
}

// EnhanceRequest 改善リクエスト
type EnhanceRequest struct {
	Text  string
	Style domain.Style
	Level domain.Level
}

// EnhanceResult 改善結果
type EnhanceResult struct {
	EnhancedText string
	EditLog      []domain.EditLogEntry
	OverallScore int
	// RunID 監査ログに保存された場合のみ設定
	RunID string
}

// NarrativeUseCase 文章の解析と改善のユースケース
type NarrativeUseCase struct {
	annotator domain.Annotator
	checker   *consistency.Checker
	enhancer  *enhancement.Enhancer
	styler    *style.Engine
	runRepo   domain.RunRepository
	maxLength int
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewNarrativeUseCase 新しいNarrativeUseCaseを作成（runRepoがnilなら監査ログを保存しない）
func NewNarrativeUseCase(annotator domain.Annotator, runRepo domain.RunRepository, maxLength int) *NarrativeUseCase {
	return &NarrativeUseCase{
		annotator: annotator,
		checker:   consistency.NewChecker(nil),
		enhancer:  enhancement.NewEnhancer(),
		styler:    style.NewEngine(),
		runRepo:   runRepo,
		maxLength: maxLength,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// MaxLength 受け付ける最大文字数
func (uc *NarrativeUseCase) MaxLength() int {
	return uc.maxLength
}

// AuditEnabled 監査ログを保存するか
func (uc *NarrativeUseCase) AuditEnabled() bool {
	return uc.runRepo != nil
}

// Analyze 一貫性の問題とスコアを返す
func (uc *NarrativeUseCase) Analyze(ctx context.Context, text string) (*AnalyzeResult, error) {
	if err := uc.validate(text); err != nil {
		return nil, err
	}

	sentences, err := uc.annotate(ctx, text)
	if err != nil {
		return nil, err
	}
	issues := uc.checker.Check(sentences)

	return &AnalyzeResult{
		OverallScore:     OverallScore(issues),
		Issues:           issues,
		TenseConsistent:  domain.CountKind(issues, domain.IssueTense) == 0,
		ReadabilityScore: ReadabilityScore(text),
		Characters:       uc.checker.Characters(sentences),
	}, nil
}

// Enhance 一貫性の修正、反復の除去、文体変換の順に適用し、編集ログを返す
func (uc *NarrativeUseCase) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResult, error) {
	if err := uc.validate(req.Text); err != nil {
		return nil, err
	}
	targetStyle, err := domain.ParseStyle(string(req.Style))
	if err != nil {
		return nil, err
	}
	level, err := domain.ParseLevel(string(req.Level))
	if err != nil {
		return nil, err
	}

	text := req.Text
	var editLog []domain.EditLogEntry

	// 1. 一貫性の修正（代名詞の候補）
	sentences, err := uc.annotate(ctx, text)
	if err != nil {
		return nil, err
	}
	fixes, err := compose.Merge(compose.FixesFromIssues(uc.checker.Check(sentences)))
	if err != nil {
		return nil, fmt.Errorf("failed to merge consistency fixes: %w", err)
	}
	if len(fixes) > 0 {
		editLog = append(editLog, compose.ToLog(text, fixes, domain.OpReplace)...)
		if text, err = compose.Apply(text, fixes); err != nil {
			return nil, fmt.Errorf("failed to apply consistency fixes: %w", err)
		}
		// 断片文の検出は修正後の本文の文境界を使う
		if level != domain.LevelLight {
			if sentences, err = uc.annotate(ctx, text); err != nil {
				return nil, err
			}
		}
	}

	// 2. 反復の除去
	edits, findings := uc.enhancer.Enhance(text, level, sentences)
	for _, f := range findings {
		uc.logger.DebugContext(ctx, "enhancement finding",
			slog.String("kind", f.Kind),
			slog.Int("start", f.Start),
			slog.Int("end", f.End),
			slog.String("note", f.Note),
		)
	}
	if len(edits) > 0 {
		editLog = append(editLog, compose.ToLog(text, edits, domain.OpReplace)...)
		if text, err = compose.Apply(text, edits); err != nil {
			return nil, fmt.Errorf("failed to apply enhancement edits: %w", err)
		}
	}

	// 3. 文体変換
	if targetStyle != domain.StyleNeutral {
		var styleEdits []domain.StyleEdit
		text, styleEdits = uc.styler.Transform(text, targetStyle)
		editLog = append(editLog, compose.StyleLog(styleEdits, domain.OpReplace)...)
	}

	issues, err := uc.check(ctx, text)
	if err != nil {
		return nil, err
	}

	result := &EnhanceResult{
		EnhancedText: text,
		EditLog:      editLog,
		OverallScore: OverallScore(issues),
	}
	result.RunID = uc.record(ctx, req.Text, targetStyle, level, result)
	return result, nil
}

// Run 保存済みの監査ログを取得
func (uc *NarrativeUseCase) Run(ctx context.Context, id string) (*domain.EnhancementRun, error) {
	if uc.runRepo == nil {
		return nil, domain.ErrRunNotFound
	}
	run, err := uc.runRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return run, nil
}

// RecentRuns 新しい順に監査ログを取得
func (uc *NarrativeUseCase) RecentRuns(ctx context.Context, limit int) ([]*domain.EnhancementRun, error) {
	if uc.runRepo == nil {
		return []*domain.EnhancementRun{}, nil
	}
	runs, err := uc.runRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent runs: %w", err)
	}
	return runs, nil
}

// record 監査ログを保存する。保存の失敗はリクエストを失敗させない
func (uc *NarrativeUseCase) record(ctx context.Context, original string, s domain.Style, level domain.Level, result *EnhanceResult) string {
	if uc.runRepo == nil {
		return ""
	}
	run := &domain.EnhancementRun{
		ID:           uc.newID(),
		Style:        s,
		Level:        level,
		OriginalText: original,
		EnhancedText: result.EnhancedText,
		OverallScore: result.OverallScore,
		EditLog:      result.EditLog,
		CreatedAt:    uc.now(),
	}
	if err := uc.runRepo.Create(ctx, run); err != nil {
		uc.logger.WarnContext(ctx, "failed to save enhancement run", slog.String("error", err.Error()))
		return ""
	}
	return run.ID
}

func (uc *NarrativeUseCase) validate(text string) error {
	if text == "" {
		return domain.ErrEmptyInput
	}
	if uc.maxLength > 0 && utf8.RuneCountInString(text) > uc.maxLength {
		return fmt.Errorf("%w (%d characters)", domain.ErrInputTooLarge, uc.maxLength)
	}
	return nil
}

func (uc *NarrativeUseCase) annotate(ctx context.Context, text string) ([]domain.Sentence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	sentences, err := uc.annotator.Annotate(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrAnnotationUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrAnnotationUnavailable, err)
	}
	return sentences, nil
}

func (uc *NarrativeUseCase) check(ctx context.Context, text string) ([]domain.Issue, error) {
	sentences, err := uc.annotate(ctx, text)
	if err != nil {
		return nil, err
	}
	return uc.checker.Check(sentences), nil
}
