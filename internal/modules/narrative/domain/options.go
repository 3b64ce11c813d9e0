package domain

import "fmt"

// Style 文体
type Style string

const (
	StyleNeutral      Style = "neutral"
	StyleFormal       Style = "formal"
	StyleCasual       Style = "casual"
	StyleAcademic     Style = "academic"
	StyleStorytelling Style = "storytelling"
	StylePersuasive   Style = "persuasive"
)

// Styles 受け付ける文体の一覧
var Styles = []Style{StyleNeutral, StyleFormal, StyleCasual, StyleAcademic, StyleStorytelling, StylePersuasive}

// ParseStyle 文字列から文体を取得（空ならneutral）
func ParseStyle(s string) (Style, error) {
	if s == "" {
		return StyleNeutral, nil
	}
	for _, style := range Styles {
		if string(style) == s {
			return style, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
}

// Level 改善の強さ
type Level string

const (
	LevelLight    Level = "light"
	LevelModerate Level = "moderate"
	LevelHeavy    Level = "heavy"
)

// ParseLevel 文字列から改善レベルを取得（空ならmoderate）
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "":
		return LevelModerate, nil
	case LevelLight, LevelModerate, LevelHeavy:
		return Level(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}
