package domain

import "errors"

var (
	// ErrEmptyInput 入力が空
	ErrEmptyInput = errors.New("text is empty")
	// ErrInputTooLarge 入力が上限を超えている
	ErrInputTooLarge = errors.New("text exceeds maximum length")
	// ErrAnnotationUnavailable アノテーションエンジンが利用できない
	ErrAnnotationUnavailable = errors.New("annotation engine unavailable")
	// ErrInvalidStyle 未知のスタイル
	ErrInvalidStyle = errors.New("invalid style")
	// ErrInvalidLevel 未知の改善レベル
	ErrInvalidLevel = errors.New("invalid enhancement level")
	// ErrEditOutOfRange 編集範囲がテキスト外
	ErrEditOutOfRange = errors.New("edit out of range")
	// ErrEditOverlap 同一バッチ内で編集が重なっている
	ErrEditOverlap = errors.New("overlapping edits")
	// ErrRunNotFound 監査ログが見つからない
	ErrRunNotFound = errors.New("enhancement run not found")
)
