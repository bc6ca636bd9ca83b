package story

import "strings"

// problemPreviewRunes bounds the problem text shown in the summary.
const problemPreviewRunes = 50

// Form holds the transient input values of a single interaction.
type Form struct {
	MainCharacter    string `json:"mainCharacter"`
	Location         string `json:"location"`
	MainProblem      string `json:"mainProblem"`
	InspirationLabel string `json:"inspiration"`
	TargetLanguage   string `json:"targetLanguage"`
}

// HasInspiration reports whether a book label was chosen.
func (f Form) HasInspiration() bool {
	return filled(f.InspirationLabel)
}

// filled treats whitespace-only input as empty.
func filled(v string) bool {
	return strings.TrimSpace(v) != ""
}

// Summary describes how much of the form has been filled in.
type Summary struct {
	Inspiration    string `json:"inspiration,omitempty"`
	MainCharacter  string `json:"mainCharacter,omitempty"`
	Location       string `json:"location,omitempty"`
	ProblemPreview string `json:"problemPreview,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Filled         int    `json:"filled"`
	Total          int    `json:"total"`
}

// Summary 统计已填写字段。inspirationResolved 表示所选书目能否在索引中找到。
func (f Form) Summary(inspirationResolved bool) Summary {
	s := Summary{
		MainCharacter:  f.MainCharacter,
		Location:       f.Location,
		TargetLanguage: f.TargetLanguage,
		Total:          5,
	}
	if inspirationResolved {
		s.Inspiration = f.InspirationLabel
		s.Filled++
	}
	if filled(f.MainCharacter) {
		s.Filled++
	}
	if filled(f.Location) {
		s.Filled++
	}
	if filled(f.MainProblem) {
		s.ProblemPreview = previewText(f.MainProblem, problemPreviewRunes)
		s.Filled++
	}
	if filled(f.TargetLanguage) {
		s.Filled++
	}
	return s
}

func previewText(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
