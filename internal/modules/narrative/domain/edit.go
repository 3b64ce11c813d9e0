package domain

import (
	"fmt"
	"time"
)

// Edit テキストの [Start, End) を Replacement で置き換える編集
type Edit struct {
	Start       int
	End         int
	Replacement string
	Reason      string
}

// Validate 長さlengthのテキストに対して範囲が正しいか検証
func (e Edit) Validate(length int) error {
	if e.Start < 0 || e.Start > e.End || e.End > length {
		return fmt.Errorf("%w: [%d,%d) in text of length %d", ErrEditOutOfRange, e.Start, e.End, length)
	}
	return nil
}

// Overlaps 二つの編集が重なるか
func (e Edit) Overlaps(other Edit) bool {
	return !(e.End <= other.Start || other.End <= e.Start)
}

// StyleEdit スタイル変換の記録
type StyleEdit struct {
	Original string
	Modified string
	Reason   string
}

// Operation 編集ログの操作種別
type Operation string

const (
	OpReplace     Operation = "REPLACE"
	OpInsert      Operation = "INSERT"
	OpDelete      Operation = "DELETE"
	OpRestructure Operation = "RESTRUCTURE"
)

// EditLogEntry 編集ログの1行
type EditLogEntry struct {
	Operation Operation
	Original  string
	Modified  string
	Reason    string
}

// EnhancementRun 監査用に保存する改善処理の記録
type EnhancementRun struct {
	ID           string
	Style        Style
	Level        Level
	OriginalText string
	EnhancedText string
	OverallScore int
	EditLog      []EditLogEntry
	CreatedAt    time.Time
}
