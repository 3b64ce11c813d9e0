package domain

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tense 動詞の時制
type Tense string

const (
	TenseNone    Tense = ""
	TensePast    Tense = "past"
	TensePresent Tense = "present"
	TenseFuture  Tense = "future"
)

// POS 粗い品詞分類
type POS int

const (
	POSOther POS = iota
	POSVerb
	POSAux
	POSProperNoun
	POSNoun
	POSPronoun
)

// LabelPerson 人名エンティティのラベル
const LabelPerson = "PERSON"

// NoHead 係り先を持たないトークン
const NoHead = -1

// Token アノテーション済みのトークン。生成後は変更しない
type Token struct {
	Text  string
	Start int
	End   int
	POS   POS
	Tense Tense
	// Head 同一文内での係り先インデックス（NoHeadなら無し）
	Head int
	// Entity 固有表現の一部であればそのラベル
	Entity string
}

// Lower 小文字化した表層形
func (t Token) Lower() string {
	return strings.ToLower(t.Text)
}

// IsVerbal 動詞または助動詞
func (t Token) IsVerbal() bool {
	return t.POS == POSVerb || t.POS == POSAux
}

// IsCapitalized 先頭が大文字
func (t Token) IsCapitalized() bool {
	r, _ := utf8.DecodeRuneInString(t.Text)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// EntitySpan 固有表現のスパン
type EntitySpan struct {
	Label string
	Text  string
	Start int
	End   int
}

// PersonSpan 人名スパン（Nameは小文字に正規化済み）
type PersonSpan struct {
	Name  string
	Start int
	End   int
}

// Sentence 文。Start/Endは文全体を覆い、文同士は隙間なく本文を分割する
type Sentence struct {
	Text     string
	Start    int
	End      int
	Tokens   []Token
	Entities []EntitySpan
}

// Persons 文中のPERSONエンティティを出現順に返す
func (s Sentence) Persons() []PersonSpan {
	var persons []PersonSpan
	for _, ent := range s.Entities {
		if ent.Label != LabelPerson {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(ent.Text))
		if name == "" {
			continue
		}
		persons = append(persons, PersonSpan{Name: name, Start: ent.Start, End: ent.End})
	}
	return persons
}

// Annotator 言語アノテーションのポート
type Annotator interface {
	// Annotate テキストを文・トークン列に変換
	Annotate(ctx context.Context, text string) ([]Sentence, error)
}
