package di

import (
	"fmt"

	"narrative-navigator/internal/config"
	"narrative-navigator/internal/modules/narrative/domain"
	narrativeHandler "narrative-navigator/internal/modules/narrative/presentation/handler"
	narrativeUsecase "narrative-navigator/internal/modules/narrative/usecase"
	sharedAnnotation "narrative-navigator/internal/modules/shared/infrastructure/annotation"
	sharedCache "narrative-navigator/internal/modules/shared/infrastructure/cache"
	sharedDB "narrative-navigator/internal/modules/shared/infrastructure/database"
	httpHandler "narrative-navigator/internal/presentation/http/handler"
)

// Container DIコンテナ
type Container struct {
	config *config.Config

	// Shared Infrastructure
	loader    *sharedAnnotation.Loader
	annotator *sharedAnnotation.ProseAnnotator
	cacheRepo *sharedCache.RedisRepository
	runRepo   *sharedDB.BunRunRepository

	// Narrative Module
	narrativeUseCase *narrativeUsecase.NarrativeUseCase
	narrativeHandler *narrativeHandler.NarrativeHandler

	healthHandler *httpHandler.HealthHandler
}

// NewContainer 新しいContainerを作成（Redisと監査DBは有効な場合のみ接続する）
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{config: cfg}

	// Shared Infrastructure: Annotation（初回利用時に読み込む）
	container.loader = sharedAnnotation.NewLoader()
	container.annotator = sharedAnnotation.NewProseAnnotator(container.loader)

	// Shared Infrastructure: Cache Repository
	var cacheRepo domain.CacheRepository
	if cfg.Redis.Enabled {
		redisRepo, err := sharedCache.NewRedisRepository(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache repository: %w", err)
		}
		container.cacheRepo = redisRepo
		cacheRepo = redisRepo
	}

	// Shared Infrastructure: Audit Repository
	var runRepo domain.RunRepository
	if cfg.Database.Enabled {
		bunRepo, err := sharedDB.NewBunRunRepository(&cfg.Database)
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to initialize run repository: %w", err)
		}
		container.runRepo = bunRepo
		runRepo = bunRepo
	}

	// Narrative Module: UseCase
	container.narrativeUseCase = narrativeUsecase.NewNarrativeUseCase(
		container.annotator,
		runRepo,
		cfg.Limits.EffectiveMaxTextLength(),
	)

	// Narrative Module: Handler（本文はスキーマ上限の4倍まで読む）
	container.narrativeHandler = narrativeHandler.NewNarrativeHandler(
		container.narrativeUseCase,
		cacheRepo,
		cfg.Redis.TTL,
		int64(cfg.Limits.SchemaMaxLength)*4,
	)

	container.healthHandler = httpHandler.NewHealthHandler(container.annotator)

	return container, nil
}

// Config 設定を取得
func (c *Container) Config() *config.Config {
	return c.config
}

// WarmAnnotator アノテーションモデルを読み込む
func (c *Container) WarmAnnotator() error {
	return c.loader.Warm()
}

// NarrativeUseCase 解析・改善ユースケースを取得
func (c *Container) NarrativeUseCase() *narrativeUsecase.NarrativeUseCase {
	return c.narrativeUseCase
}

// NarrativeHandler 解析・改善APIハンドラーを取得
func (c *Container) NarrativeHandler() *narrativeHandler.NarrativeHandler {
	return c.narrativeHandler
}

// HealthHandler ヘルスチェックハンドラーを取得
func (c *Container) HealthHandler() *httpHandler.HealthHandler {
	return c.healthHandler
}

// Close リソースをクローズ
func (c *Container) Close() error {
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Close(); err != nil {
			return fmt.Errorf("failed to close cache repository: %w", err)
		}
	}

	if c.runRepo != nil {
		if err := c.runRepo.Close(); err != nil {
			return fmt.Errorf("failed to close run repository: %w", err)
		}
	}

	return nil
}
