package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"narrative-navigator/internal/config"
	"narrative-navigator/internal/modules/narrative/domain"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// EnhancementRun BUNモデル
type EnhancementRun struct {
	bun.BaseModel `bun:"table:enhancement_runs"`

	ID           string    `bun:"id,pk,type:varchar(36)"`
	Style        string    `bun:"style,notnull,type:varchar(20)"`
	Level        string    `bun:"level,notnull,type:varchar(20)"`
	OriginalText string    `bun:"original_text,notnull,type:mediumtext"`
	EnhancedText string    `bun:"enhanced_text,notnull,type:mediumtext"`
	OverallScore int       `bun:"overall_score,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`

	Entries []EditLogEntry `bun:"rel:has-many,join:id=run_id"`
}

// EditLogEntry BUNモデル
type EditLogEntry struct {
	bun.BaseModel `bun:"table:edit_log_entries"`

	ID        string `bun:"id,pk,type:varchar(36)"`
	RunID     string `bun:"run_id,notnull,type:varchar(36)"`
	Seq       int    `bun:"seq,notnull"`
	Operation string `bun:"operation,notnull,type:varchar(20)"`
	Original  string `bun:"original,notnull,type:text"`
	Modified  string `bun:"modified,notnull,type:text"`
	Reason    string `bun:"reason,notnull,type:text"`
}

// BunRunRepository 監査ログのBUN実装（MySQLまたはSQLite）
type BunRunRepository struct {
	db *bun.DB
}

// NewBunRunRepository 設定のドライバーで接続し、テーブルがなければ作成する
func NewBunRunRepository(cfg *config.DatabaseConfig) (*BunRunRepository, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &BunRunRepository{db: db}
	if err := repo.CreateSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewBunRunRepositoryWithDB DBインスタンスから作成（テスト用）
func NewBunRunRepositoryWithDB(db *bun.DB) *BunRunRepository {
	return &BunRunRepository{db: db}
}

func open(cfg *config.DatabaseConfig) (*bun.DB, error) {
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.MySQL.User, cfg.MySQL.Password, cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.Database)
		sqldb, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return bun.NewDB(sqldb, mysqldialect.New()), nil
	case "sqlite", "":
		sqldb, err := sql.Open("sqlite", cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLiteは書き込みを直列化する（:memory: は接続ごとに別DBになるため1本に固定）
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// CreateSchema テーブルを作成（既存なら何もしない）
func (r *BunRunRepository) CreateSchema(ctx context.Context) error {
	models := []interface{}{(*EnhancementRun)(nil), (*EditLogEntry)(nil)}
	for _, model := range models {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Create 監査ログと編集ログを保存
func (r *BunRunRepository) Create(ctx context.Context, run *domain.EnhancementRun) error {
	model := r.toModel(run)

	// トランザクション内で実行
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create enhancement run: %w", err)
		}

		if len(model.Entries) > 0 {
			if _, err := tx.NewInsert().Model(&model.Entries).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create edit log entries: %w", err)
			}
		}

		return nil
	})
}

// FindByID IDで監査ログを検索
func (r *BunRunRepository) FindByID(ctx context.Context, id string) (*domain.EnhancementRun, error) {
	model := &EnhancementRun{}
	err := r.db.NewSelect().
		Model(model).
		Relation("Entries", orderBySeq).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find enhancement run: %w", err)
	}

	return r.toEntity(model), nil
}

// FindRecent 新しい順に監査ログを取得（limitが0以下なら20件、上限100件）
func (r *BunRunRepository) FindRecent(ctx context.Context, limit int) ([]*domain.EnhancementRun, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	var models []EnhancementRun
	err := r.db.NewSelect().
		Model(&models).
		Relation("Entries", orderBySeq).
		Order("created_at DESC", "id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find enhancement runs: %w", err)
	}

	runs := make([]*domain.EnhancementRun, len(models))
	for i := range models {
		runs[i] = r.toEntity(&models[i])
	}
	return runs, nil
}

// Close データベース接続を閉じる
func (r *BunRunRepository) Close() error {
	return r.db.Close()
}

func orderBySeq(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("seq ASC")
}

// toModel エンティティをモデルに変換
func (r *BunRunRepository) toModel(run *domain.EnhancementRun) *EnhancementRun {
	model := &EnhancementRun{
		ID:           run.ID,
		Style:        string(run.Style),
		Level:        string(run.Level),
		OriginalText: run.OriginalText,
		EnhancedText: run.EnhancedText,
		OverallScore: run.OverallScore,
		CreatedAt:    run.CreatedAt,
	}

	for i, entry := range run.EditLog {
		model.Entries = append(model.Entries, EditLogEntry{
			ID:        uuid.NewString(),
			RunID:     run.ID,
			Seq:       i,
			Operation: string(entry.Operation),
			Original:  entry.Original,
			Modified:  entry.Modified,
			Reason:    entry.Reason,
		})
	}

	return model
}

// toEntity モデルをエンティティに変換
func (r *BunRunRepository) toEntity(model *EnhancementRun) *domain.EnhancementRun {
	run := &domain.EnhancementRun{
		ID:           model.ID,
		Style:        domain.Style(model.Style),
		Level:        domain.Level(model.Level),
		OriginalText: model.OriginalText,
		EnhancedText: model.EnhancedText,
		OverallScore: model.OverallScore,
		CreatedAt:    model.CreatedAt,
		EditLog:      []domain.EditLogEntry{},
	}

	for _, entry := range model.Entries {
		run.EditLog = append(run.EditLog, domain.EditLogEntry{
			Operation: domain.Operation(entry.Operation),
			Original:  entry.Original,
			Modified:  entry.Modified,
			Reason:    entry.Reason,
		})
	}

	return run
}
