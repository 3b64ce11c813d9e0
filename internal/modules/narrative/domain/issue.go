package domain

// IssueKind 一貫性問題の種類
type IssueKind string

const (
	IssuePronoun    IssueKind = "pronoun"
	IssueTense      IssueKind = "tense"
	IssueCharacter  IssueKind = "character"
	IssueRepetition IssueKind = "repetition"
)

// Issue 一貫性チェックで見つかった問題。0 <= Start <= End <= len(text)
type Issue struct {
	Kind       IssueKind
	Start      int
	End        int
	Message    string
	Original   string
	Suggestion *string
}

// HasFix 編集に変換できる問題か
func (i Issue) HasFix() bool {
	return i.Suggestion != nil && i.Original != ""
}

// CountKind 指定種類の問題数
func CountKind(issues []Issue, kind IssueKind) int {
	n := 0
	for _, issue := range issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}
