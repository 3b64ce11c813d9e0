package domain

import (
	"context"
	"time"
)

// RunRepository 改善処理の監査ログのリポジトリ
type RunRepository interface {
	Create(ctx context.Context, run *EnhancementRun) error
	FindByID(ctx context.Context, id string) (*EnhancementRun, error)
	FindRecent(ctx context.Context, limit int) ([]*EnhancementRun, error)
}

// CacheRepository キャッシュリポジトリのインターフェース
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
