// Package enhancement は本文の局所的な反復を検出し、置換編集を提案する
package enhancement

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"narrative-navigator/internal/modules/narrative/domain"
)

const repetitionReason = "Removed repeated word for clarity and flow."

// fillerWords 重複を安全にまとめられる語
var fillerWords = map[string]bool{
	"very": true, "really": true, "quite": true, "just": true,
	"so": true, "actually": true, "literally": true, "basically": true,
}

// Finding 予約済みの解析パスの検出結果。編集には変換しない
type Finding struct {
	Kind  string
	Start int
	End   int
	Note  string
}

// Enhancer 改善エンジン
type Enhancer struct{}

// NewEnhancer 新しいEnhancerを作成
func NewEnhancer() *Enhancer {
	return &Enhancer{}
}

// Enhance 編集を (Start昇順, End降順) で返す。
// sentences は予約済みパス（断片文の検出）でのみ参照し、nilでもよい
func (e *Enhancer) Enhance(text string, level domain.Level, sentences []domain.Sentence) ([]domain.Edit, []Finding) {
	edits := repetitionEdits(text)

	var findings []Finding
	if level == domain.LevelModerate || level == domain.LevelHeavy {
		findings = append(findings, fragments(sentences)...)
	}
	if level == domain.LevelHeavy {
		findings = append(findings, phraseRepetitions(text, 5)...)
	}

	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}
		return edits[i].End > edits[j].End
	})
	return edits, findings
}

// span 本文中の語の位置
type span struct {
	start, end int
}

// repeatedWord 空白だけを挟んで同じ語が続く箇所（大文字小文字は無視）
var repeatedWord = regexp2.MustCompile(`\b(\w+)\s+\1\b`, regexp2.IgnoreCase)

// repetitionEdits 語の直後の繰り返しを探す。
// まとめるのは埋め草語のみで、内容語の重複（"had had" など）は編集しない
func repetitionEdits(text string) []domain.Edit {
	var edits []domain.Edit
	offsets := runeOffsets(text)
	m, err := repeatedWord.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = repeatedWord.FindNextMatch(m) {
		kept := m.GroupByNumber(1).String()
		if !fillerWords[strings.ToLower(kept)] {
			continue
		}
		// regexp2の位置はルーン単位
		edits = append(edits, domain.Edit{
			Start:       offsets[m.Index],
			End:         offsets[m.Index+m.Length],
			Replacement: kept,
			Reason:      repetitionReason,
		})
	}
	return edits
}

// runeOffsets ルーン位置 -> バイト位置（末尾を含む）
func runeOffsets(text string) []int {
	out := make([]int, 0, len(text)+1)
	for i := range text {
		out = append(out, i)
	}
	return append(out, len(text))
}

// fragments 動詞を含まない短い文（4トークン以下で . ! ? で終わる）
func fragments(sentences []domain.Sentence) []Finding {
	var out []Finding
	for _, sent := range sentences {
		if len(sent.Tokens) == 0 || len(sent.Tokens) > 4 {
			continue
		}
		hasVerb := false
		for _, tok := range sent.Tokens {
			if tok.POS == domain.POSVerb {
				hasVerb = true
				break
			}
		}
		body := strings.TrimSpace(sent.Text)
		last, _ := utf8.DecodeLastRuneInString(body)
		if hasVerb || (last != '.' && last != '!' && last != '?') {
			continue
		}
		out = append(out, Finding{
			Kind:  "fragment",
			Start: sent.Start,
			End:   sent.End,
			Note:  "Short sentence without a clear verb; consider expanding or connecting to previous sentence.",
		})
	}
	return out
}

// phraseRepetitions n語の連なりが2回目以降に現れた位置
func phraseRepetitions(text string, n int) []Finding {
	fields := fieldSpans(text)
	if len(fields) < n*2 {
		return nil
	}
	seen := make(map[string]bool)
	var out []Finding
	for i := 0; i+n <= len(fields); i++ {
		parts := make([]string, n)
		for k := 0; k < n; k++ {
			f := fields[i+k]
			parts[k] = strings.ToLower(text[f.start:f.end])
		}
		key := strings.Join(parts, "\x00")
		if seen[key] {
			out = append(out, Finding{
				Kind:  "phrase-repetition",
				Start: fields[i].start,
				End:   fields[i+n-1].end,
				Note:  "Repeated phrase; consider rephrasing.",
			})
			continue
		}
		seen[key] = true
	}
	return out
}

// fieldSpans 空白区切りの語の位置
func fieldSpans(text string) []span {
	var out []span
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(text)})
	}
	return out
}
