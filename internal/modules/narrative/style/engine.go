// Package style は辞書ベースの語句置換で文体を変換する
package style

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"narrative-navigator/internal/modules/narrative/domain"
)

type compiledRule struct {
	Rule
	pattern *regexp2.Regexp
}

// Engine 文体変換エンジン。辞書は生成時に一度だけコンパイルし、以降は読み取り専用
type Engine struct {
	lexicons map[domain.Style][]compiledRule
}

// NewEngine 新しいEngineを作成
func NewEngine() *Engine {
	lexicons := make(map[domain.Style][]Rule)
	for _, s := range domain.Styles {
		if rules := Rules(s); rules != nil {
			lexicons[s] = rules
		}
	}
	return newEngine(lexicons)
}

func newEngine(lexicons map[domain.Style][]Rule) *Engine {
	e := &Engine{lexicons: make(map[domain.Style][]compiledRule, len(lexicons))}
	for s, rules := range lexicons {
		rules = append([]Rule(nil), rules...)
		// 長いキーを先に。同じ長さは宣言順
		sort.SliceStable(rules, func(i, j int) bool {
			return utf8.RuneCountInString(rules[i].From) > utf8.RuneCountInString(rules[j].From)
		})
		compiled := make([]compiledRule, len(rules))
		for i, r := range rules {
			compiled[i] = compiledRule{
				Rule:    r,
				pattern: regexp2.MustCompile(`\b`+regexp2.Escape(r.From)+`\b`, regexp2.IgnoreCase),
			}
		}
		e.lexicons[s] = compiled
	}
	return e
}

// Transform 文体を変換し、変換後の本文と置換の記録を返す。
// 各規則は直前の規則まで適用済みの本文に対して照合する
func (e *Engine) Transform(text string, s domain.Style) (string, []domain.StyleEdit) {
	rules, ok := e.lexicons[s]
	if !ok {
		return text, nil
	}

	reason := fmt.Sprintf("Style (%s): word substitution for tone.", s)
	result := text
	var edits []domain.StyleEdit
	for _, r := range rules {
		var ruleEdits []domain.StyleEdit
		replaced, err := r.pattern.ReplaceFunc(result, func(m regexp2.Match) string {
			snippet := m.String()
			replacement := matchCase(snippet, r.To)
			ruleEdits = append(ruleEdits, domain.StyleEdit{Original: snippet, Modified: replacement, Reason: reason})
			return replacement
		}, -1, -1)
		if err != nil {
			continue
		}
		result = replaced
		edits = append(edits, ruleEdits...)
	}
	return result, edits
}

// matchCase 元の語句が大文字で始まるなら置換語を先頭大文字・残り小文字にする
func matchCase(snippet, replacement string) string {
	first, _ := utf8.DecodeRuneInString(snippet)
	if !unicode.IsUpper(first) {
		return replacement
	}
	return capitalize(replacement)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
