package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"narrative-navigator/internal/config"
	"narrative-navigator/internal/modules/narrative/compose"
	"narrative-navigator/internal/modules/narrative/domain"
	"narrative-navigator/internal/modules/narrative/presentation/handler"
	"narrative-navigator/internal/modules/narrative/usecase"
	"narrative-navigator/internal/modules/shared/infrastructure/database"
)

// options コマンド共通のフラグ
type options struct {
	configPath string
	jsonOutput bool
	style      string
	level      string
	force      bool
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".narrative-navigator", "config.yaml")
}

// newRootCmd narrativeコマンドを作成
func newRootCmd(annotator domain.Annotator) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "narrative",
		Short:         "Analyze and enhance narrative text",
		Long:          "Checks pronoun, tense and character consistency, removes filler repetition and applies a target writing style.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath(), "path to config.yaml")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print the API response as JSON")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Report consistency issues and scores",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, annotator, opts)
		},
	}

	enhanceCmd := &cobra.Command{
		Use:   "enhance [file|-]",
		Short: "Apply consistency fixes, repetition removal and style transfer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnhance(cmd, args, annotator, opts)
		},
	}
	enhanceCmd.Flags().StringVar(&opts.style, "style", string(domain.StyleNeutral), "neutral, formal, casual, academic, storytelling or persuasive")
	enhanceCmd.Flags().StringVar(&opts.level, "level", string(domain.LevelModerate), "light, moderate or heavy")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}
	initCmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config file")

	root.AddCommand(analyzeCmd, enhanceCmd, initCmd)
	return root
}

// runInit デフォルト設定を書き出す。既存のファイルは --force がなければ上書きしない
func runInit(cmd *cobra.Command, opts *options) error {
	if _, err := os.Stat(opts.configPath); err == nil && !opts.force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", opts.configPath)
	}
	if err := os.MkdirAll(filepath.Dir(opts.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.DefaultConfig().Save(opts.configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string, annotator domain.Annotator, opts *options) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	uc, closeFn, err := newUseCase(annotator, opts.configPath, false)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := uc.Analyze(cmd.Context(), text)
	if err != nil {
		return err
	}
	response := handler.NewAnalyzeResponse(text, result)

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return writeJSON(out, response)
	}

	for _, issue := range response.ConsistencyIssues {
		fmt.Fprintf(out, "%s %d-%d %s\n", issue.Type, issue.Start, issue.End, issue.Message)
	}
	fmt.Fprintf(out, "overall_score: %d\n", response.OverallScore)
	fmt.Fprintf(out, "tense_consistency: %t\n", response.TenseConsistency)
	if response.ReadabilityScore != nil {
		fmt.Fprintf(out, "readability_score: %.1f\n", *response.ReadabilityScore)
	} else {
		fmt.Fprintln(out, "readability_score: n/a")
	}
	return nil
}

func runEnhance(cmd *cobra.Command, args []string, annotator domain.Annotator, opts *options) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	uc, closeFn, err := newUseCase(annotator, opts.configPath, true)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := uc.Enhance(cmd.Context(), usecase.EnhanceRequest{
		Text:  text,
		Style: domain.Style(opts.style),
		Level: domain.Level(opts.level),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return writeJSON(out, handler.NewEnhanceResponse(result))
	}

	fmt.Fprintln(out, result.EnhancedText)
	fmt.Fprintln(out)
	if len(result.EditLog) == 0 {
		fmt.Fprintln(out, "No edits.")
	} else {
		fmt.Fprint(out, compose.Render(result.EditLog))
	}
	fmt.Fprintf(out, "overall_score: %d\n", result.OverallScore)
	if result.RunID != "" {
		fmt.Fprintf(out, "run_id: %s\n", result.RunID)
	}
	return nil
}

// newUseCase 設定を読み込んでユースケースを作成する。監査DBは改善時かつ有効な場合のみ開く
func newUseCase(annotator domain.Annotator, configPath string, withAudit bool) (*usecase.NarrativeUseCase, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	var runRepo domain.RunRepository
	closeFn := func() {}
	if withAudit && cfg.Database.Enabled {
		repo, err := database.NewBunRunRepository(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		runRepo = repo
		closeFn = func() { _ = repo.Close() }
	}

	return usecase.NewNarrativeUseCase(annotator, runRepo, cfg.Limits.EffectiveMaxTextLength()), closeFn, nil
}

// readInput ファイルまたは標準入力（引数なし・"-"）から本文を読む。末尾の改行は除く
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
