// Package domaintest はテスト用の手組みアノテーションを提供する
package domaintest

import (
	"context"
	"fmt"
	"strings"

	"narrative-navigator/internal/modules/narrative/domain"
)

// Word テスト文書の1語
type Word struct {
	text   string
	pos    domain.POS
	tense  domain.Tense
	entity string
	head   int
}

// Tok 分類なしの語（記号など）
func Tok(text string) Word {
	return Word{text: text, pos: domain.POSOther, head: domain.NoHead}
}

// Verb 動詞
func Verb(text string, tense domain.Tense) Word {
	return Word{text: text, pos: domain.POSVerb, tense: tense, head: domain.NoHead}
}

// Aux 助動詞（時制なし）
func Aux(text string) Word {
	return Word{text: text, pos: domain.POSAux, head: domain.NoHead}
}

// Noun 普通名詞
func Noun(text string) Word {
	return Word{text: text, pos: domain.POSNoun, head: domain.NoHead}
}

// Propn 固有名詞（エンティティなし）
func Propn(text string) Word {
	return Word{text: text, pos: domain.POSProperNoun, head: domain.NoHead}
}

// Person PERSONエンティティの固有名詞
func Person(text string) Word {
	return Word{text: text, pos: domain.POSProperNoun, entity: domain.LabelPerson, head: domain.NoHead}
}

// Pron 代名詞
func Pron(text string) Word {
	return Word{text: text, pos: domain.POSPronoun, head: domain.NoHead}
}

// HeadedBy 係り先を設定
func (w Word) HeadedBy(i int) Word {
	w.head = i
	return w
}

// Doc 文ごとの語リストからアノテーション済みの文列を組み立てる。
// 語は本文中を左から順に検索して位置を決める
func Doc(text string, sentences ...[]Word) []domain.Sentence {
	out := make([]domain.Sentence, 0, len(sentences))
	cursor := 0
	for _, words := range sentences {
		var sent domain.Sentence
		for _, w := range words {
			idx := strings.Index(text[cursor:], w.text)
			if idx < 0 {
				panic(fmt.Sprintf("domaintest: %q not found after offset %d", w.text, cursor))
			}
			start := cursor + idx
			end := start + len(w.text)
			cursor = end
			sent.Tokens = append(sent.Tokens, domain.Token{
				Text:   w.text,
				Start:  start,
				End:    end,
				POS:    w.pos,
				Tense:  w.tense,
				Head:   w.head,
				Entity: w.entity,
			})
		}
		sent.Entities = entities(text, sent.Tokens)
		out = append(out, sent)
	}

	// 文のスパンを本文の分割になるよう広げる
	for i := range out {
		switch {
		case i == 0:
			out[i].Start = 0
		case len(out[i].Tokens) > 0:
			out[i].Start = out[i].Tokens[0].Start
		default:
			out[i].Start = out[i-1].End
		}
		if i > 0 {
			out[i-1].End = out[i].Start
			out[i-1].Text = text[out[i-1].Start:out[i-1].End]
		}
	}
	if n := len(out); n > 0 {
		out[n-1].End = len(text)
		out[n-1].Text = text[out[n-1].Start:]
	}
	return out
}

func entities(text string, tokens []domain.Token) []domain.EntitySpan {
	var spans []domain.EntitySpan
	for i := 0; i < len(tokens); i++ {
		if tokens[i].Entity == "" {
			continue
		}
		j := i
		for j+1 < len(tokens) && tokens[j+1].Entity == tokens[i].Entity {
			j++
		}
		spans = append(spans, domain.EntitySpan{
			Label: tokens[i].Entity,
			Text:  text[tokens[i].Start:tokens[j].End],
			Start: tokens[i].Start,
			End:   tokens[j].End,
		})
		i = j
	}
	return spans
}

// Annotator 固定の結果を返すアノテーター
type Annotator struct {
	Sentences []domain.Sentence
	Err       error
	Calls     int
}

// Annotate 固定の文列を返す
func (a *Annotator) Annotate(ctx context.Context, text string) ([]domain.Sentence, error) {
	a.Calls++
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Sentences, nil
}

// Func 関数をAnnotatorとして使う
type Func func(ctx context.Context, text string) ([]domain.Sentence, error)

// Annotate 関数を呼び出す
func (f Func) Annotate(ctx context.Context, text string) ([]domain.Sentence, error) {
	return f(ctx, text)
}
