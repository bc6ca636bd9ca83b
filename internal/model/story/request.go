package story

import "github.com/zhouzirui/z-fairytale/backend/internal/model/table"

// TimestampLayout is the sortable wall-clock format stored with every request.
const TimestampLayout = "2006-01-02 15:04:05"

// Storage column names shared by the input and output tables.
const (
	ColumnTimestamp            = "timestamp"
	ColumnInspirationBookID    = "inspiration_book_id"
	ColumnInspirationBookTitle = "inspiration_book_title"
	ColumnMainCharacter        = "main_character"
	ColumnLocation             = "location"
	ColumnMainProblem          = "main_problem"
	ColumnTargetLanguage       = "target_language"
	ColumnFairytale            = "fairytale"
)

// RequestColumns is the fixed column order of a submitted row.
var RequestColumns = []string{
	ColumnTimestamp,
	ColumnInspirationBookID,
	ColumnInspirationBookTitle,
	ColumnMainCharacter,
	ColumnLocation,
	ColumnMainProblem,
	ColumnTargetLanguage,
}

// Request captures one submission of story parameters.
type Request struct {
	Timestamp            string  `json:"timestamp"`
	InspirationBookID    *string `json:"inspirationBookId"`
	InspirationBookTitle *string `json:"inspirationBookTitle"`
	MainCharacter        string  `json:"mainCharacter"`
	Location             string  `json:"location"`
	MainProblem          string  `json:"mainProblem"`
	TargetLanguage       string  `json:"targetLanguage"`
}

// Row 转换为单行的存储表
func (r Request) Row() *table.Table {
	t := table.New(RequestColumns...)
	// Append cannot fail: the value count matches RequestColumns.
	_ = t.Append(
		r.Timestamp,
		deref(r.InspirationBookID),
		deref(r.InspirationBookTitle),
		r.MainCharacter,
		r.Location,
		r.MainProblem,
		r.TargetLanguage,
	)
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
