package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"narrative-navigator/internal/config"
	"narrative-navigator/internal/modules/narrative/domain"
	"narrative-navigator/internal/modules/shared/infrastructure/testcontainer"
)

func setupSQLiteRepo(t *testing.T) (*BunRunRepository, func()) {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Enabled: true,
		Driver:  "sqlite",
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "audit.db")},
	}
	repo, err := NewBunRunRepository(cfg)
	if err != nil {
		t.Fatalf("Failed to create sqlite repository: %v", err)
	}
	return repo, func() { _ = repo.Close() }
}

func setupMySQLRepo(t *testing.T) (*BunRunRepository, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mysql container test in short mode")
	}
	ctx := context.Background()

	// TestContainer起動
	mysqlContainer, err := testcontainer.StartMySQL(ctx, t)
	if err != nil {
		t.Fatalf("Failed to start mysql container: %v", err)
	}

	cfg, err := mysqlContainer.DatabaseConfig()
	if err != nil {
		_ = mysqlContainer.Close(ctx)
		t.Fatalf("Failed to build database config: %v", err)
	}
	repo, err := NewBunRunRepository(&cfg)
	if err != nil {
		_ = mysqlContainer.Close(ctx)
		t.Fatalf("Failed to create mysql repository: %v", err)
	}

	return repo, func() {
		_ = repo.Close()
		_ = mysqlContainer.Close(ctx)
	}
}

func sampleRun(id string, createdAt time.Time) *domain.EnhancementRun {
	return &domain.EnhancementRun{
		ID:           id,
		Style:        domain.StyleFormal,
		Level:        domain.LevelModerate,
		OriginalText: "Rahul walked home. She can't get very very tired.",
		EnhancedText: "Rahul walked home. he cannot obtain very tired.",
		OverallScore: 100,
		CreatedAt:    createdAt,
		EditLog: []domain.EditLogEntry{
			{Operation: domain.OpReplace, Original: "She", Modified: "he", Reason: "Pronoun consistency"},
			{Operation: domain.OpReplace, Original: "very very", Modified: "very", Reason: "Removed repetition"},
			{Operation: domain.OpRestructure, Original: "can't", Modified: "cannot", Reason: "Style (formal)"},
		},
	}
}

// 秒未満はMySQLのDATETIMEで切り捨てられる
var runComparer = cmp.Options{
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(a, b time.Time) bool { return a.Truncate(time.Second).Equal(b.Truncate(time.Second)) }),
}

func testCreateAndFind(t *testing.T, repo *BunRunRepository) {
	t.Helper()
	ctx := context.Background()
	createdAt := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		run     *domain.EnhancementRun
		findID  string
		wantErr error
	}{
		{
			name:   "正常系: 編集ログ付き",
			run:    sampleRun("run-with-log", createdAt),
			findID: "run-with-log",
		},
		{
			name: "境界値: 編集ログなし",
			run: &domain.EnhancementRun{
				ID:           "run-without-log",
				Style:        domain.StyleNeutral,
				Level:        domain.LevelLight,
				OriginalText: "Rahul walked home.",
				EnhancedText: "Rahul walked home.",
				OverallScore: 100,
				CreatedAt:    createdAt,
			},
			findID: "run-without-log",
		},
		{
			name:    "異常系: 存在しないID",
			findID:  "missing",
			wantErr: domain.ErrRunNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.run != nil {
				if err := repo.Create(ctx, tt.run); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
			}

			got, err := repo.FindByID(ctx, tt.findID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FindByID() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindByID() error = %v", err)
			}
			if diff := cmp.Diff(tt.run, got, runComparer); diff != "" {
				t.Errorf("FindByID() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func testFindRecent(t *testing.T, repo *BunRunRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := sampleRun(fmt.Sprintf("recent-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name    string
		limit   int
		wantIDs []string
	}{
		{name: "正常系: 新しい順", limit: 3, wantIDs: []string{"recent-2", "recent-1", "recent-0"}},
		{name: "境界値: 件数制限", limit: 1, wantIDs: []string{"recent-2"}},
		{name: "境界値: 0はデフォルト件数", limit: 0, wantIDs: []string{"recent-2", "recent-1", "recent-0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := repo.FindRecent(ctx, tt.limit)
			if err != nil {
				t.Fatalf("FindRecent() error = %v", err)
			}
			if len(runs) < len(tt.wantIDs) {
				t.Fatalf("FindRecent() returned %d runs, want at least %d", len(runs), len(tt.wantIDs))
			}
			var ids []string
			for _, run := range runs[:len(tt.wantIDs)] {
				ids = append(ids, run.ID)
				if len(run.EditLog) != 3 {
					t.Errorf("run %s has %d log entries, want 3", run.ID, len(run.EditLog))
				}
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("FindRecent() ids mismatch (-want +got):\n%s", diff)
			}
			if len(runs) > 0 && runs[0].EditLog[1].Original != "very very" {
				t.Errorf("edit log order not preserved: %+v", runs[0].EditLog)
			}
		})
	}
}

func TestBunRunRepository_SQLite_CreateAndFind(t *testing.T) {
	repo, cleanup := setupSQLiteRepo(t)
	defer cleanup()
	testCreateAndFind(t, repo)
}

func TestBunRunRepository_SQLite_FindRecent(t *testing.T) {
	repo, cleanup := setupSQLiteRepo(t)
	defer cleanup()
	testFindRecent(t, repo)
}

func TestBunRunRepository_SQLite_DuplicateID(t *testing.T) {
	repo, cleanup := setupSQLiteRepo(t)
	defer cleanup()

	ctx := context.Background()
	run := sampleRun("dup", time.Now().UTC())
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, run); err == nil {
		t.Error("Create() expected error for duplicate id")
	}

	// ロールバックされて編集ログは重複しない
	got, err := repo.FindByID(ctx, "dup")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if len(got.EditLog) != len(run.EditLog) {
		t.Errorf("EditLog length = %d, want %d", len(got.EditLog), len(run.EditLog))
	}
}

func TestBunRunRepository_SchemaIsIdempotent(t *testing.T) {
	repo, cleanup := setupSQLiteRepo(t)
	defer cleanup()

	if err := repo.CreateSchema(context.Background()); err != nil {
		t.Errorf("CreateSchema() second call error = %v", err)
	}
}

func TestNewBunRunRepository_UnsupportedDriver(t *testing.T) {
	_, err := NewBunRunRepository(&config.DatabaseConfig{Driver: "postgres"})
	if err == nil {
		t.Error("NewBunRunRepository() expected error for unsupported driver")
	}
}

func TestBunRunRepository_MySQL(t *testing.T) {
	repo, cleanup := setupMySQLRepo(t)
	defer cleanup()

	t.Run("CreateAndFind", func(t *testing.T) { testCreateAndFind(t, repo) })
	t.Run("FindRecent", func(t *testing.T) { testFindRecent(t, repo) })
}
