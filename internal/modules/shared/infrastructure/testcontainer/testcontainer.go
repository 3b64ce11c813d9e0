// Package testcontainer は統合テスト用のRedis/MySQLコンテナを起動する
package testcontainer

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"narrative-navigator/internal/config"
)

const (
	redisImage = "redis:7-alpine"
	mysqlImage = "mysql:8.0"
)

// RedisContainer Redisコンテナのラッパー
type RedisContainer struct {
	Container *rediscontainer.RedisContainer
	Host      string
	Port      string
}

// MySQLContainer MySQLコンテナのラッパー
type MySQLContainer struct {
	Container *mysql.MySQLContainer
	Host      string
	Port      string
	Database  string
	User      string
	Password  string
}

// StartRedis Redisコンテナを起動
func StartRedis(ctx context.Context, t *testing.T) (*RedisContainer, error) {
	t.Helper()

	container, err := rediscontainer.Run(ctx,
		redisImage,
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get redis host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get redis port: %w", err)
	}

	return &RedisContainer{
		Container: container,
		Host:      host,
		Port:      port.Port(),
	}, nil
}

// StartMySQL 監査ログ用のMySQLコンテナを起動
func StartMySQL(ctx context.Context, t *testing.T) (*MySQLContainer, error) {
	t.Helper()

	const (
		database = "narrative_test"
		user     = "narrative"
		password = "narrative"
	)

	container, err := mysql.Run(ctx,
		mysqlImage,
		mysql.WithDatabase(database),
		mysql.WithUsername(user),
		mysql.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mysql host: %w", err)
	}

	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mysql port: %w", err)
	}

	return &MySQLContainer{
		Container: container,
		Host:      host,
		Port:      port.Port(),
		Database:  database,
		User:      user,
		Password:  password,
	}, nil
}

// Close Redisコンテナを停止
func (r *RedisContainer) Close(ctx context.Context) error {
	if r.Container != nil {
		return r.Container.Terminate(ctx)
	}
	return nil
}

// Close MySQLコンテナを停止
func (m *MySQLContainer) Close(ctx context.Context) error {
	if m.Container != nil {
		return m.Container.Terminate(ctx)
	}
	return nil
}

// Config コンテナに接続するためのRedis設定
func (r *RedisContainer) Config() (config.RedisConfig, error) {
	port, err := strconv.Atoi(r.Port)
	if err != nil {
		return config.RedisConfig{}, fmt.Errorf("invalid redis port %q: %w", r.Port, err)
	}
	return config.RedisConfig{Enabled: true, Host: r.Host, Port: port, TTL: time.Hour}, nil
}

// DatabaseConfig コンテナに接続するための監査ログDB設定
func (m *MySQLContainer) DatabaseConfig() (config.DatabaseConfig, error) {
	port, err := strconv.Atoi(m.Port)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("invalid mysql port %q: %w", m.Port, err)
	}
	return config.DatabaseConfig{
		Enabled: true,
		Driver:  "mysql",
		MySQL: config.MySQLConfig{
			Host:     m.Host,
			Port:     port,
			User:     m.User,
			Password: m.Password,
			Database: m.Database,
		},
	}, nil
}
