package consistency

// Gender 文法上の性
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// NameLexicon 小文字のファーストネーム -> 性
type NameLexicon map[string]Gender

// DefaultNames 代名詞チェック用の既知の名前（不完全。必要に応じて拡張）
var DefaultNames = NameLexicon{
	"rahul": GenderMale, "arjun": GenderMale, "raj": GenderMale, "amit": GenderMale,
	"john": GenderMale, "james": GenderMale, "michael": GenderMale, "david": GenderMale,
	"priya": GenderFemale, "anita": GenderFemale, "meera": GenderFemale, "sita": GenderFemale,
	"mary": GenderFemale, "jane": GenderFemale, "emma": GenderFemale, "sarah": GenderFemale,
}

var (
	malePronouns   = map[string]bool{"he": true, "him": true, "his": true, "himself": true}
	femalePronouns = map[string]bool{"she": true, "her": true, "hers": true, "herself": true}
)

// pronounGender 性を持つ代名詞なら その性を返す（they/it などは対象外）
func pronounGender(lower string) Gender {
	switch {
	case malePronouns[lower]:
		return GenderMale
	case femalePronouns[lower]:
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// suggestFor 期待される性に合わせた代名詞の候補。
// her は所有格と目的格の区別をしないため常に him を返す
func suggestFor(lower string, expected Gender) string {
	if expected == GenderMale {
		switch lower {
		case "she":
			return "he"
		case "her":
			return "him"
		default:
			return "his"
		}
	}
	if lower == "he" {
		return "she"
	}
	return "her"
}
