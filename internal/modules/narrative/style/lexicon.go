package style

import "narrative-navigator/internal/modules/narrative/domain"

// Rule 語句の置換規則
type Rule struct {
	From string
	To   string
}

var formalRules = []Rule{
	{"get", "obtain"}, {"got", "received"}, {"buy", "purchase"}, {"use", "utilize"},
	{"need", "require"}, {"want", "wish"}, {"show", "demonstrate"}, {"tell", "inform"},
	{"ask", "request"}, {"try", "attempt"}, {"start", "commence"}, {"end", "conclude"},
	{"help", "assist"}, {"give", "provide"}, {"make", "create"}, {"keep", "maintain"},
	{"good", "satisfactory"}, {"bad", "unsatisfactory"}, {"big", "significant"},
	{"small", "minimal"}, {"a lot of", "numerous"}, {"lots of", "many"},
	{"don't", "do not"}, {"can't", "cannot"}, {"won't", "will not"}, {"isn't", "is not"},
	{"aren't", "are not"}, {"wasn't", "was not"}, {"weren't", "were not"},
	{"haven't", "have not"}, {"hasn't", "has not"}, {"hadn't", "had not"},
	{"it's", "it is"}, {"that's", "that is"}, {"there's", "there is"}, {"here's", "here is"},
	{"we're", "we are"}, {"they're", "they are"}, {"you're", "you are"}, {"I'm", "I am"},
}

var casualRules = []Rule{
	{"obtain", "get"}, {"received", "got"}, {"purchase", "buy"}, {"utilize", "use"},
	{"require", "need"}, {"demonstrate", "show"}, {"inform", "tell"}, {"request", "ask"},
	{"attempt", "try"}, {"commence", "start"}, {"conclude", "end"}, {"assist", "help"},
	{"provide", "give"}, {"create", "make"}, {"maintain", "keep"},
	{"satisfactory", "good"}, {"unsatisfactory", "bad"}, {"significant", "big"},
	{"minimal", "small"}, {"numerous", "a lot of"}, {"do not", "don't"}, {"cannot", "can't"},
	{"will not", "won't"}, {"is not", "isn't"}, {"are not", "aren't"}, {"was not", "wasn't"},
	{"were not", "weren't"}, {"have not", "haven't"}, {"has not", "hasn't"}, {"had not", "hadn't"},
	{"it is", "it's"}, {"that is", "that's"}, {"there is", "there's"}, {"we are", "we're"},
	{"they are", "they're"}, {"you are", "you're"}, {"I am", "I'm"},
}

// academicRules formalに重ねる規則（同じキーは上書き）
var academicRules = []Rule{
	{"think", "argue"}, {"believe", "contend"}, {"say", "state"}, {"good", "substantial"},
	{"bad", "problematic"}, {"show", "indicate"}, {"prove", "demonstrate"},
	{"maybe", "perhaps"}, {"stuff", "material"}, {"thing", "factor"}, {"things", "factors"},
	{"a lot", "considerably"}, {"really", "substantially"}, {"very", "highly"},
}

var storytellingRules = []Rule{
	{"then", "then"}, {"suddenly", "suddenly"}, {"after that", "after that"},
	{"next", "next"}, {"finally", "finally"},
}

var persuasiveRules = []Rule{
	{"clearly", "clearly"}, {"obviously", "obviously"}, {"indeed", "indeed"}, {"certainly", "certainly"},
}

// persuasiveStrength 弱い表現を断定に寄せる規則
var persuasiveStrength = []Rule{
	{"might", "will"}, {"maybe", "certainly"}, {"perhaps", "clearly"}, {"could", "will"},
}

// overlay base に extra を重ねる。既存キーは元の位置のまま置換先だけ差し替え、新しいキーは末尾に追加
func overlay(base []Rule, extra ...[]Rule) []Rule {
	out := append([]Rule(nil), base...)
	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.From] = i
	}
	for _, rules := range extra {
		for _, r := range rules {
			if i, ok := index[r.From]; ok {
				out[i].To = r.To
				continue
			}
			index[r.From] = len(out)
			out = append(out, r)
		}
	}
	return out
}

// Rules 文体ごとの規則（宣言順）。neutralと未知の文体はnil
func Rules(s domain.Style) []Rule {
	switch s {
	case domain.StyleFormal:
		return overlay(formalRules)
	case domain.StyleCasual:
		return overlay(casualRules)
	case domain.StyleAcademic:
		return overlay(formalRules, academicRules)
	case domain.StyleStorytelling:
		return overlay(storytellingRules)
	case domain.StylePersuasive:
		return overlay(persuasiveRules, persuasiveStrength)
	default:
		return nil
	}
}
