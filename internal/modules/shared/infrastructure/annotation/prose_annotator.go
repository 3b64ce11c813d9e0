package annotation

import (
	"context"
	"fmt"

	"github.com/jdkato/prose/v2"

	"narrative-navigator/internal/modules/narrative/domain"
)

// ProseAnnotator prose によるアノテーター
type ProseAnnotator struct {
	loader *Loader
}

// NewProseAnnotator 新しいProseAnnotatorを作成
func NewProseAnnotator(loader *Loader) *ProseAnnotator {
	return &ProseAnnotator{loader: loader}
}

// Annotate 本文を文とトークンに分け、品詞・時制・人名ラベルを付ける
func (a *ProseAnnotator) Annotate(ctx context.Context, text string) ([]domain.Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model, err := a.loader.Model()
	if err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text, prose.UsingModel(model))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnnotationUnavailable, err)
	}

	sents := doc.Sentences()
	sentenceTexts := make([]string, len(sents))
	for i, s := range sents {
		sentenceTexts[i] = s.Text
	}

	toks := doc.Tokens()
	tokens := make([]rawToken, len(toks))
	for i, tok := range toks {
		tokens[i] = rawToken{Text: tok.Text, Tag: tok.Tag, Label: tok.Label}
	}

	return align(text, sentenceTexts, tokens), nil
}

// Ready モデルが読み込み済みか
func (a *ProseAnnotator) Ready() bool {
	return a.loader.Ready()
}
