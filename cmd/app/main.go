package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"narrative-navigator/internal/config"
	"narrative-navigator/internal/presentation/di"
	"narrative-navigator/internal/presentation/http/router"
)

// AppConfig アプリケーション設定
type AppConfig struct {
	ConfigPath string
	// Port 空なら設定ファイルのserver.portを使う
	Port string
}

// ServerInterface サーバーインターフェース（Seam化）
type ServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App アプリケーション構造体（Seamパターン）
type App struct {
	config     *AppConfig
	cfg        *config.Config
	container  *di.Container
	server     *http.Server
	serverSeam ServerInterface // テスト用のSeam
}

// NewApp 新しいAppを作成
func NewApp(appCfg *AppConfig) (*App, error) {
	// 設定の読み込み
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Printf("Failed to load config: %v. Using defaults.", err)
		cfg = config.DefaultConfig()
	}

	// ポートの決定（PORT環境変数 > 設定ファイル > 8001）
	if appCfg.Port == "" {
		appCfg.Port = cfg.Server.Port
	}
	if appCfg.Port == "" {
		appCfg.Port = "8001"
	}

	// DIコンテナの初期化
	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DI container: %w", err)
	}

	// サーバーの設定
	server := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router.NewRouter(container),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	app := &App{
		config:    appCfg,
		cfg:       cfg,
		container: container,
		server:    server,
	}
	// デフォルトでは実際のサーバーを使用
	app.serverSeam = server

	return app, nil
}

// Start サーバーを起動
func (a *App) Start() error {
	a.printStartupMessage()

	// モデルの読み込みはリクエスト受付と並行して行う
	if a.cfg.Annotation.WarmOnStart {
		go a.warmAnnotator()
	}

	return a.serverSeam.ListenAndServe()
}

func (a *App) warmAnnotator() {
	start := time.Now()
	if err := a.container.WarmAnnotator(); err != nil {
		slog.Warn("Annotation model warm-up failed; will retry on first request",
			slog.String("error", err.Error()),
		)
		return
	}
	slog.Info("Annotation model loaded", slog.Duration("duration", time.Since(start)))
}

// printStartupMessage 起動メッセージを出力
func (a *App) printStartupMessage() {
	fmt.Println("=== Narrative Navigator API ===")
	fmt.Printf("Server listening on http://0.0.0.0:%s\n", a.config.Port)
	fmt.Printf("Max text length: %d characters\n", a.cfg.Limits.EffectiveMaxTextLength())
	fmt.Printf("Response cache: %s, audit log: %s\n", enabled(a.cfg.Redis.Enabled), auditLabel(a.cfg.Database))
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health          - Health check")
	fmt.Println("  POST /api/analyze     - Consistency analysis")
	fmt.Println("  POST /api/enhance     - Consistency fixes, repetition removal, style transfer")
	fmt.Println("  GET  /api/runs        - Stored enhancement runs (?id= or ?limit=)")
	fmt.Println()
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func auditLabel(db config.DatabaseConfig) string {
	if !db.Enabled {
		return "disabled"
	}
	return db.Driver
}

// Shutdown サーバーをシャットダウン
func (a *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	// サーバーのシャットダウン（Seamを使用）
	if err := a.serverSeam.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// コンテナのクローズ
	if err := a.container.Close(); err != nil {
		return fmt.Errorf("container close failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Run アプリケーションを実行（グレースフルシャットダウン付き）
func (a *App) Run() error {
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// シグナルの待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		// グレースフルシャットダウン
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return a.Shutdown(ctx)
	}
}

// realMain 実際のmain処理（テスト可能にするため分離）
func realMain() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get home directory: %v. Using current directory.", err)
		homeDir = "."
	}

	appCfg := &AppConfig{
		ConfigPath: filepath.Join(homeDir, ".narrative-navigator", "config.yaml"),
		Port:       os.Getenv("PORT"),
	}

	app, err := NewApp(appCfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	return app.Run()
}

func main() {
	if err := realMain(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
