package enhancement

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"narrative-navigator/internal/modules/narrative/domain"
	dt "narrative-navigator/internal/modules/narrative/domain/domaintest"
)

func TestEnhancer_Enhance(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		level domain.Level
		want  []domain.Edit
	}{
		{
			name:  "正常系: very very をまとめる",
			text:  "It was very very cold.",
			level: domain.LevelLight,
			want: []domain.Edit{
				{Start: 7, End: 16, Replacement: "very", Reason: repetitionReason},
			},
		},
		{
			name:  "正常系: 大文字小文字を無視し最初の表記を残す",
			text:  "Really really? Yes.",
			level: domain.LevelLight,
			want: []domain.Edit{
				{Start: 0, End: 13, Replacement: "Really", Reason: repetitionReason},
			},
		},
		{
			name:  "正常系: 改行やタブを挟んでも検出",
			text:  "so\n\tso good",
			level: domain.LevelModerate,
			want: []domain.Edit{
				{Start: 0, End: 6, Replacement: "so", Reason: repetitionReason},
			},
		},
		{
			name:  "正常系: 複数箇所は位置順",
			text:  "just just a test, quite quite fun",
			level: domain.LevelHeavy,
			want: []domain.Edit{
				{Start: 0, End: 9, Replacement: "just", Reason: repetitionReason},
				{Start: 18, End: 29, Replacement: "quite", Reason: repetitionReason},
			},
		},
		{
			name:  "正常系: 3連続は最初の2語だけ",
			text:  "very very very",
			level: domain.LevelLight,
			want: []domain.Edit{
				{Start: 0, End: 9, Replacement: "very", Reason: repetitionReason},
			},
		},
		{
			name:  "正常系: 内容語の重複は編集しない",
			text:  "She had had enough.",
			level: domain.LevelLight,
			want:  nil,
		},
		{
			name:  "正常系: 内容語の重複の直後の埋め草語は対象外",
			text:  "the the the very",
			level: domain.LevelLight,
			want:  nil,
		},
		{
			name:  "境界値: 句読点を挟むと重複ではない",
			text:  "very, very cold",
			level: domain.LevelLight,
			want:  nil,
		},
		{
			name:  "境界値: 語の一部は一致しない",
			text:  "so soon",
			level: domain.LevelLight,
			want:  nil,
		},
		{
			name:  "正常系: 多バイト文字の後ろでもバイト位置を返す",
			text:  "Café was so so good.",
			level: domain.LevelLight,
			want: []domain.Edit{
				{Start: 10, End: 15, Replacement: "so", Reason: repetitionReason},
			},
		},
		{
			name:  "境界値: アクセント付き文字に続く語は語境界にならない",
			text:  "éso so",
			level: domain.LevelLight,
			want:  nil,
		},
		{
			name:  "境界値: 空文字列",
			text:  "",
			level: domain.LevelLight,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := NewEnhancer().Enhance(tt.text, tt.level, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Enhance() mismatch (-want +got):\n%s", diff)
			}
			for _, e := range got {
				if err := e.Validate(len(tt.text)); err != nil {
					t.Errorf("invalid edit span: %v", err)
				}
			}
		})
	}
}

func TestEnhancer_ReservedPassesNeverEdit(t *testing.T) {
	text := "The old house. The cat sat on the mat and the cat sat on the mat again."
	doc := dt.Doc(text,
		[]dt.Word{dt.Tok("The"), dt.Tok("old"), dt.Noun("house"), dt.Tok(".")},
		[]dt.Word{
			dt.Tok("The"), dt.Noun("cat"), dt.Verb("sat", domain.TensePast), dt.Tok("on"), dt.Tok("the"), dt.Noun("mat"),
			dt.Tok("and"), dt.Tok("the"), dt.Noun("cat"), dt.Verb("sat", domain.TensePast), dt.Tok("on"), dt.Tok("the"),
			dt.Noun("mat"), dt.Tok("again"), dt.Tok("."),
		},
	)

	tests := []struct {
		name         string
		level        domain.Level
		wantFindings []string
	}{
		{name: "light は予約パスを実行しない", level: domain.LevelLight, wantFindings: nil},
		{name: "moderate は断片文のみ", level: domain.LevelModerate, wantFindings: []string{"fragment"}},
		{name: "heavy は断片文と句の反復", level: domain.LevelHeavy, wantFindings: []string{"fragment", "phrase-repetition"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits, findings := NewEnhancer().Enhance(text, tt.level, doc)
			if len(edits) != 0 {
				t.Errorf("Enhance() returned edits %v, want none", edits)
			}

			var kinds []string
			for _, f := range findings {
				if len(kinds) == 0 || kinds[len(kinds)-1] != f.Kind {
					kinds = append(kinds, f.Kind)
				}
			}
			if diff := cmp.Diff(tt.wantFindings, kinds); diff != "" {
				t.Errorf("finding kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFragments(t *testing.T) {
	text := "Silence. He waited. Then what"
	doc := dt.Doc(text,
		[]dt.Word{dt.Noun("Silence"), dt.Tok(".")},
		[]dt.Word{dt.Pron("He"), dt.Verb("waited", domain.TensePast), dt.Tok(".")},
		[]dt.Word{dt.Tok("Then"), dt.Tok("what")},
	)

	got := fragments(doc)
	if len(got) != 1 {
		t.Fatalf("fragments() = %d findings, want 1", len(got))
	}
	if got[0].Start != 0 || got[0].End != 9 {
		t.Errorf("fragment span = [%d,%d), want [0,9)", got[0].Start, got[0].End)
	}
}

func TestPhraseRepetitions(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantSpans [][2]int
	}{
		{
			name:      "正常系: 2回目の出現位置",
			text:      "one two three four five and one two three four five",
			wantSpans: [][2]int{{28, 51}},
		},
		{
			name:      "正常系: 大文字小文字を区別しない",
			text:      "a b c d e x A B C D E",
			wantSpans: [][2]int{{12, 21}},
		},
		{
			name:      "境界値: 語数が足りない",
			text:      "a b c d e a b c d",
			wantSpans: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var spans [][2]int
			for _, f := range phraseRepetitions(tt.text, 5) {
				spans = append(spans, [2]int{f.Start, f.End})
			}
			if diff := cmp.Diff(tt.wantSpans, spans); diff != "" {
				t.Errorf("phraseRepetitions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnhancer_Deterministic(t *testing.T) {
	text := "It was very very cold and so so dark, really really."
	e := NewEnhancer()
	first, _ := e.Enhance(text, domain.LevelHeavy, nil)
	for i := 0; i < 5; i++ {
		again, _ := e.Enhance(text, domain.LevelHeavy, nil)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}
