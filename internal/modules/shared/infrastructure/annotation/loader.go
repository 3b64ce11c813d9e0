// Package annotation は文分割・品詞タグ付け・固有表現抽出を行う言語アノテーションの実装
package annotation

import (
	"fmt"
	"sync"

	"github.com/jdkato/prose/v2"
	"golang.org/x/sync/singleflight"

	"narrative-navigator/internal/modules/narrative/domain"
)

const warmUpText = "Rahul walked home. She was tired."

// Loader モデルを一度だけ読み込んで使い回す。
// 同時に初回アクセスが来ても読み込みは1回で、失敗した場合は次の呼び出しで再試行する
type Loader struct {
	build func() (*prose.Model, error)
	group singleflight.Group

	mu    sync.RWMutex
	model *prose.Model
}

// NewLoader 新しいLoaderを作成
func NewLoader() *Loader {
	return newLoader(buildDefaultModel)
}

func newLoader(build func() (*prose.Model, error)) *Loader {
	return &Loader{build: build}
}

// buildDefaultModel 組み込みのタガーと固有表現抽出器を読み込む
func buildDefaultModel() (*prose.Model, error) {
	doc, err := prose.NewDocument(warmUpText)
	if err != nil {
		return nil, err
	}
	if doc.Model == nil {
		return nil, fmt.Errorf("prose returned no model")
	}
	return doc.Model, nil
}

// Model 読み込み済みのモデルを返す（未読み込みならここで読み込む）
func (l *Loader) Model() (*prose.Model, error) {
	l.mu.RLock()
	model := l.model
	l.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	v, err, _ := l.group.Do("model", func() (interface{}, error) {
		l.mu.RLock()
		cached := l.model
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		m, err := l.build()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.model = m
		l.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load model: %w", domain.ErrAnnotationUnavailable, err)
	}
	return v.(*prose.Model), nil
}

// Warm 起動時にモデルを読み込む
func (l *Loader) Warm() error {
	_, err := l.Model()
	return err
}

// Ready モデルが読み込み済みか
func (l *Loader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model != nil
}
