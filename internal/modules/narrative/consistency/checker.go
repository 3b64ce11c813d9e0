// Package consistency は代名詞と先行詞の性の不一致、文をまたぐ時制の揺れを検出する
package consistency

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"narrative-navigator/internal/modules/narrative/domain"
)

const excerptRunes = 60

// Checker 一貫性チェックのエンジン
type Checker struct {
	names NameLexicon
}

// NewChecker 新しいCheckerを作成（namesがnilなら既定の辞書）
func NewChecker(names NameLexicon) *Checker {
	if names == nil {
		names = DefaultNames
	}
	return &Checker{names: names}
}

// Check 全チェックを実行する。
// 結果は代名詞の問題（文書順）の後に時制の問題（文書順）を連結したもの
func (c *Checker) Check(sentences []domain.Sentence) []domain.Issue {
	var issues []domain.Issue
	issues = append(issues, c.checkPronouns(sentences)...)
	issues = append(issues, checkTense(sentences)...)
	return issues
}

// antecedents 1回のチェック内で見つかった名前 -> 性（最初の出現を優先）
type antecedents struct {
	lexicon NameLexicon
	seen    map[string]Gender
}

func newAntecedents(lexicon NameLexicon) *antecedents {
	return &antecedents{lexicon: lexicon, seen: make(map[string]Gender)}
}

func (a *antecedents) observe(name string) {
	if _, ok := a.seen[name]; ok {
		return
	}
	if g, ok := a.lexicon[name]; ok {
		a.seen[name] = g
	}
}

func (a *antecedents) gender(name string) Gender {
	if g, ok := a.seen[name]; ok {
		return g
	}
	return a.lexicon[name]
}

// candidates 文中の先行詞候補。PERSONがなければ最初の固有名詞
func candidates(sent domain.Sentence) []domain.PersonSpan {
	if persons := sent.Persons(); len(persons) > 0 {
		return persons
	}
	for _, tok := range sent.Tokens {
		if tok.POS == domain.POSProperNoun && tok.IsCapitalized() && utf8.RuneCountInString(tok.Text) > 1 {
			return []domain.PersonSpan{{Name: tok.Lower(), Start: tok.Start, End: tok.End}}
		}
	}
	return nil
}

func (c *Checker) checkPronouns(sentences []domain.Sentence) []domain.Issue {
	var issues []domain.Issue
	state := newAntecedents(c.names)

	for i, sent := range sentences {
		cands := candidates(sent)
		for _, cand := range cands {
			state.observe(cand.Name)
		}

		for _, tok := range sent.Tokens {
			lower := tok.Lower()
			actual := pronounGender(lower)
			if actual == GenderUnknown {
				continue
			}

			expected := c.resolve(state, cands, sentences, i)
			if expected == GenderUnknown || expected == actual {
				continue
			}

			suggestion := suggestFor(lower, expected)
			message := "Pronoun 'he/him' may not match antecedent (expected female)."
			if expected == GenderMale {
				message = "Pronoun 'she/her' may not match antecedent (expected male)."
			}
			issues = append(issues, domain.Issue{
				Kind:       domain.IssuePronoun,
				Start:      tok.Start,
				End:        tok.End,
				Message:    message,
				Original:   tok.Text,
				Suggestion: &suggestion,
			})
		}
	}
	return issues
}

// resolve 先行詞の性を決める: 同じ文の最初の候補、なければ直前の文
func (c *Checker) resolve(state *antecedents, cands []domain.PersonSpan, sentences []domain.Sentence, i int) Gender {
	if len(cands) > 0 {
		if g := state.gender(cands[0].Name); g != GenderUnknown {
			return g
		}
	}
	if i == 0 {
		return GenderUnknown
	}

	prev := sentences[i-1]
	if persons := prev.Persons(); len(persons) > 0 {
		if g := state.gender(persons[0].Name); g != GenderUnknown {
			return g
		}
	}
	for _, tok := range prev.Tokens {
		if tok.POS == domain.POSProperNoun && tok.IsCapitalized() {
			return c.names[tok.Lower()]
		}
	}
	return GenderUnknown
}

// sentenceTense 時制を持つ最初の動詞の時制。時制のない動詞は未来表現かどうかを確認する
func sentenceTense(sent domain.Sentence) domain.Tense {
	for i, tok := range sent.Tokens {
		if !tok.IsVerbal() {
			continue
		}
		if tok.Tense != domain.TenseNone {
			return tok.Tense
		}
		if marksFuture(sent, i) {
			return domain.TenseFuture
		}
	}
	return domain.TenseNone
}

func marksFuture(sent domain.Sentence, i int) bool {
	switch sent.Tokens[i].Lower() {
	case "will", "shall", "'ll":
		return true
	case "going":
		for _, tok := range sent.Tokens {
			if tok.Head == i && tok.Lower() == "to" {
				return true
			}
		}
	}
	return false
}

func checkTense(sentences []domain.Sentence) []domain.Issue {
	var issues []domain.Issue
	prev := domain.TenseNone

	for _, sent := range sentences {
		tense := sentenceTense(sent)
		if tense == domain.TenseNone {
			continue
		}
		if prev != domain.TenseNone && tense != prev && len(sent.Tokens) > 0 {
			first := sent.Tokens[0]
			issues = append(issues, domain.Issue{
				Kind:     domain.IssueTense,
				Start:    first.Start,
				End:      first.End,
				Message:  fmt.Sprintf("Tense switch: previous sentence was %s, this one appears %s.", prev, tense),
				Original: excerpt(sent),
			})
		}
		prev = tense
	}
	return issues
}

// excerpt 文の先頭60文字（切り詰めた場合は ... を付ける）
func excerpt(sent domain.Sentence) string {
	body := sentenceBody(sent)
	runes := []rune(body)
	if len(runes) <= excerptRunes {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(string(runes[:excerptRunes])) + "..."
}

// sentenceBody 最初のトークンから最後のトークンまでの本文
func sentenceBody(sent domain.Sentence) string {
	if len(sent.Tokens) == 0 {
		return strings.TrimSpace(sent.Text)
	}
	from := sent.Tokens[0].Start - sent.Start
	to := sent.Tokens[len(sent.Tokens)-1].End - sent.Start
	if from < 0 || to > len(sent.Text) || from > to {
		return strings.TrimSpace(sent.Text)
	}
	return sent.Text[from:to]
}

// Characters 人名の表層形を出現順に重複なしで返す。
// Checkとは別の収集だけのパスで、問題は出さない（Analyzeが結果に載せる）
// TODO: 愛称とフルネームの照合は共参照解析を導入してから
func (c *Checker) Characters(sentences []domain.Sentence) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, sent := range sentences {
		for _, p := range sent.Persons() {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}
	return names
}
