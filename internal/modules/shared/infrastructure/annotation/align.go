package annotation

import (
	"strings"
	"unicode"

	"narrative-navigator/internal/modules/narrative/domain"
)

// rawToken アノテーションライブラリが返すオフセットなしのトークン
type rawToken struct {
	Text  string
	Tag   string
	Label string
}

// align 文とトークンの表層形を本文中で左から順に探し、バイトオフセットを付ける。
// 文は本文を隙間なく分割するように広げる。見つからないトークンは捨てる
func align(text string, sentenceTexts []string, tokens []rawToken) []domain.Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	starts := sentenceStarts(text, sentenceTexts)
	sentences := make([]domain.Sentence, len(starts))
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sentences[i] = domain.Sentence{Text: text[start:end], Start: start, End: end}
	}

	tags := make([][]string, len(sentences))
	cursor := 0
	current := 0
	for _, raw := range tokens {
		start, ok := locate(text, raw.Text, cursor)
		if !ok {
			continue
		}
		end := start + len(raw.Text)
		cursor = end

		for current+1 < len(sentences) && start >= sentences[current+1].Start {
			current++
		}
		sent := &sentences[current]
		pos, tense := classify(raw.Tag)
		sent.Tokens = append(sent.Tokens, domain.Token{
			Text:   raw.Text,
			Start:  start,
			End:    end,
			POS:    pos,
			Tense:  tense,
			Head:   domain.NoHead,
			Entity: entityLabel(raw.Label),
		})
		sent.Entities = extendEntities(sent.Entities, text, raw.Label, start, end)
		tags[current] = append(tags[current], raw.Tag)
	}

	for i := range sentences {
		assignHeads(sentences[i].Tokens, tags[i])
	}
	return sentences
}

// sentenceStarts 各文の開始位置。最初の文は0から始まり、見つからない文は直前の文に含める
func sentenceStarts(text string, sentenceTexts []string) []int {
	starts := []int{0}
	cursor := 0
	first := true
	for _, s := range sentenceTexts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		idx := strings.Index(text[cursor:], s)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		cursor = start + len(s)
		if !first && start > starts[len(starts)-1] {
			starts = append(starts, start)
		}
		first = false
	}
	return starts
}

// locate cursor以降でsurfaceを探す。語を読み飛ばすような一致は採用しない
func locate(text, surface string, cursor int) (int, bool) {
	if surface == "" {
		return 0, false
	}
	idx := strings.Index(text[cursor:], surface)
	if idx < 0 {
		return 0, false
	}
	for _, r := range text[cursor : cursor+idx] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return 0, false
		}
	}
	return cursor + idx, true
}

// classify Penn Treebankのタグを品詞分類と時制に変換
func classify(tag string) (domain.POS, domain.Tense) {
	switch tag {
	case "VBD", "VBN":
		return domain.POSVerb, domain.TensePast
	case "VBZ", "VBP":
		return domain.POSVerb, domain.TensePresent
	case "VB", "VBG":
		return domain.POSVerb, domain.TenseNone
	case "MD":
		return domain.POSAux, domain.TenseNone
	case "NNP", "NNPS":
		return domain.POSProperNoun, domain.TenseNone
	case "NN", "NNS":
		return domain.POSNoun, domain.TenseNone
	case "PRP", "PRP$", "WP", "WP$":
		return domain.POSPronoun, domain.TenseNone
	default:
		return domain.POSOther, domain.TenseNone
	}
}

// entityLabel IOBラベルからB-/I-を外す（Oは空）
func entityLabel(label string) string {
	switch {
	case label == "" || label == "O":
		return ""
	case strings.HasPrefix(label, "B-"), strings.HasPrefix(label, "I-"):
		return label[2:]
	default:
		return label
	}
}

// extendEntities 空白だけを挟んで同じラベルが続くトークン（B-以外）は直前のスパンを延ばす
func extendEntities(spans []domain.EntitySpan, text, label string, start, end int) []domain.EntitySpan {
	name := entityLabel(label)
	if name == "" {
		return spans
	}
	if n := len(spans); n > 0 && !strings.HasPrefix(label, "B-") && spans[n-1].Label == name &&
		strings.TrimSpace(text[spans[n-1].End:start]) == "" {
		spans[n-1].End = end
		spans[n-1].Text = text[spans[n-1].Start:end]
		return spans
	}
	return append(spans, domain.EntitySpan{Label: name, Text: text[start:end], Start: start, End: end})
}

// assignHeads 不定詞の to（直後が原形動詞VB）は直前のトークンに係る
func assignHeads(tokens []domain.Token, tags []string) {
	for i := 1; i+1 < len(tokens); i++ {
		if tokens[i].Lower() == "to" && tags[i+1] == "VB" {
			tokens[i].Head = i - 1
		}
	}
}
