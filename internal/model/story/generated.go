package story

import "github.com/zhouzirui/z-fairytale/backend/internal/model/table"

// Field is an optional column value read from the output table.
type Field struct {
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

// Generated is a read-only projection of one output-table row.
type Generated struct {
	Fairytale      string `json:"fairytale"`
	Timestamp      Field  `json:"timestamp"`
	MainCharacter  Field  `json:"mainCharacter"`
	Location       Field  `json:"location"`
	TargetLanguage Field  `json:"targetLanguage"`
}

// GeneratedFromRow projects a row. ok is false when the fairytale column is missing.
func GeneratedFromRow(t *table.Table, row int) (Generated, bool) {
	if !t.Has(ColumnFairytale) {
		return Generated{}, false
	}
	text, ok := t.Value(row, ColumnFairytale)
	if !ok {
		return Generated{}, false
	}
	field := func(column string) Field {
		v, ok := t.Value(row, column)
		return Field{Value: v, Present: ok}
	}
	return Generated{
		Fairytale:      text,
		Timestamp:      field(ColumnTimestamp),
		MainCharacter:  field(ColumnMainCharacter),
		Location:       field(ColumnLocation),
		TargetLanguage: field(ColumnTargetLanguage),
	}, true
}
