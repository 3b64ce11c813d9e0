// Package compose は複数のエンジンが出した編集をまとめ、本文に適用し、編集ログを作る
package compose

import (
	"fmt"
	"sort"
	"strings"

	"narrative-navigator/internal/modules/narrative/domain"
)

// Apply 編集を右から左へ適用した本文を返す。
// 範囲外または重なる編集が含まれる場合は何も適用せずにエラーを返す
func Apply(text string, edits []domain.Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}
	for _, e := range edits {
		if err := e.Validate(len(text)); err != nil {
			return "", err
		}
	}

	ordered := append([]domain.Edit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start > ordered[j].Start
		}
		return ordered[i].End > ordered[j].End
	})
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Overlaps(ordered[i-1]) {
			return "", fmt.Errorf("%w: [%d,%d) and [%d,%d)", domain.ErrEditOverlap,
				ordered[i].Start, ordered[i].End, ordered[i-1].Start, ordered[i-1].End)
		}
	}

	result := text
	for _, e := range ordered {
		result = result[:e.Start] + e.Replacement + result[e.End:]
	}
	return result, nil
}

// ToLog 適用前の本文から元の文字列を読み取り、編集の元の順序でログにする
func ToLog(snapshot string, edits []domain.Edit, op domain.Operation) []domain.EditLogEntry {
	if len(edits) == 0 {
		return nil
	}
	entries := make([]domain.EditLogEntry, 0, len(edits))
	for _, e := range edits {
		original := ""
		if e.Validate(len(snapshot)) == nil {
			original = snapshot[e.Start:e.End]
		}
		entries = append(entries, domain.EditLogEntry{
			Operation: op,
			Original:  original,
			Modified:  e.Replacement,
			Reason:    e.Reason,
		})
	}
	return entries
}

// StyleLog 文体変換の記録をログにする
func StyleLog(edits []domain.StyleEdit, op domain.Operation) []domain.EditLogEntry {
	if len(edits) == 0 {
		return nil
	}
	entries := make([]domain.EditLogEntry, 0, len(edits))
	for _, e := range edits {
		entries = append(entries, domain.EditLogEntry{
			Operation: op,
			Original:  e.Original,
			Modified:  e.Modified,
			Reason:    e.Reason,
		})
	}
	return entries
}

// FixesFromIssues 候補と元の文字列を持つ問題だけを編集に変換する（理由は問題のメッセージ）
func FixesFromIssues(issues []domain.Issue) []domain.Edit {
	var edits []domain.Edit
	for _, issue := range issues {
		if !issue.HasFix() {
			continue
		}
		edits = append(edits, domain.Edit{
			Start:       issue.Start,
			End:         issue.End,
			Replacement: *issue.Suggestion,
			Reason:      issue.Message,
		})
	}
	return edits
}

// Merge 同じ本文に対する複数の編集群を (Start昇順, End降順) の1つの列にまとめる。
// 同一の編集は1つに畳み、それ以外の重なりはエラー
func Merge(batches ...[]domain.Edit) ([]domain.Edit, error) {
	var merged []domain.Edit
	for _, batch := range batches {
		merged = append(merged, batch...)
	}
	if len(merged) == 0 {
		return nil, nil
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Start != merged[j].Start {
			return merged[i].Start < merged[j].Start
		}
		return merged[i].End > merged[j].End
	})

	out := merged[:1]
	for _, e := range merged[1:] {
		last := out[len(out)-1]
		if e == last {
			continue
		}
		if e.Overlaps(last) || (e.Start == last.Start && e.End == last.End) {
			return nil, fmt.Errorf("%w: [%d,%d) %q and [%d,%d) %q", domain.ErrEditOverlap,
				last.Start, last.End, last.Replacement, e.Start, e.End, e.Replacement)
		}
		out = append(out, e)
	}
	return out, nil
}

// Render 編集ログを人が読める形式にする（1行1件）
func Render(entries []domain.EditLogEntry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s %q -> %q (%s)\n", i+1, e.Operation, e.Original, e.Modified, e.Reason)
	}
	return b.String()
}
