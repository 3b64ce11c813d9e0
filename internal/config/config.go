package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config アプリケーション全体の設定
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Limits     LimitsConfig     `yaml:"limits"`
	Annotation AnnotationConfig `yaml:"annotation"`
	Redis      RedisConfig      `yaml:"redis"`
	Database   DatabaseConfig   `yaml:"database"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ServerConfig HTTPサーバーの設定
type ServerConfig struct {
	Port           string        `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// LimitsConfig 入力サイズの上限
type LimitsConfig struct {
	// MaxTextLength 処理エンドポイントの上限（文字数）
	MaxTextLength int `yaml:"max_text_length"`
	// SchemaMaxLength スキーマ検証層の上限（文字数）。低い方が優先される
	SchemaMaxLength int `yaml:"schema_max_length"`
}

// AnnotationConfig 言語アノテーションエンジンの設定
type AnnotationConfig struct {
	// WarmOnStart 起動時にモデルを読み込む
	WarmOnStart bool `yaml:"warm_on_start"`
}

// RedisConfig Redisの設定
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// DatabaseConfig 監査ログ保存先の設定
type DatabaseConfig struct {
	Enabled bool         `yaml:"enabled"`
	Driver  string       `yaml:"driver"` // mysql | sqlite
	MySQL   MySQLConfig  `yaml:"mysql"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
}

// MySQLConfig MySQLの設定
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// SQLiteConfig SQLiteの設定
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RateLimitConfig レート制限の設定（0で無効）
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// EffectiveMaxTextLength 実際に適用される上限（二つの上限のうち低い方）
func (l LimitsConfig) EffectiveMaxTextLength() int {
	switch {
	case l.MaxTextLength <= 0:
		return l.SchemaMaxLength
	case l.SchemaMaxLength <= 0:
		return l.MaxTextLength
	case l.MaxTextLength < l.SchemaMaxLength:
		return l.MaxTextLength
	default:
		return l.SchemaMaxLength
	}
}

// Load 設定ファイルを読み込む
func Load(configPath string) (*Config, error) {
	// 設定ファイルが存在しない場合はデフォルト設定を返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 環境変数の展開
	dataStr := os.ExpandEnv(string(data))

	// 未指定の項目はデフォルト値を維持する
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(dataStr), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// DefaultConfig デフォルト設定を返す
func DefaultConfig() *Config {
	// Redis/MySQLのホストはテスト環境では localhost を使用
	redisHost := "redis"
	mysqlHost := "mysql"
	if os.Getenv("GO_ENV") == "test" {
		redisHost = "localhost"
		mysqlHost = "localhost"
	}

	return &Config{
		Server: ServerConfig{
			Port:         "8001",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			AllowedOrigins: []string{
				"http://localhost:5173", "http://127.0.0.1:5173",
				"http://localhost:8080", "http://127.0.0.1:8080",
			},
		},
		Limits: LimitsConfig{
			MaxTextLength:   20_000,
			SchemaMaxLength: 50_000,
		},
		Annotation: AnnotationConfig{
			WarmOnStart: true,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     redisHost,
			Port:     6379,
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		Database: DatabaseConfig{
			Enabled: false,
			Driver:  "sqlite",
			MySQL: MySQLConfig{
				Host:     mysqlHost,
				Port:     3306,
				User:     "root",
				Password: os.Getenv("MYSQL_ROOT_PASSWORD"),
				Database: "narrative",
			},
			SQLite: SQLiteConfig{
				Path: "narrative-audit.db",
			},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             0,
		},
	}
}

// Save 設定をファイルに保存する
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
