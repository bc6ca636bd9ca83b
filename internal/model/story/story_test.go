package story

import (
	"strings"
	"testing"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/table"
)

func TestRequestRowColumnOrder(t *testing.T) {
	id, title := "7", "Cinderella (7)"
	req := Request{
		Timestamp:            "2024-05-01 10:00:00",
		InspirationBookID:    &id,
		InspirationBookTitle: &title,
		MainCharacter:        "Fox",
		Location:             "Dark Woods",
		MainProblem:          "Lost key",
		TargetLanguage:       "Czech",
	}

	row := req.Row()
	if strings.Join(row.Columns, ",") != "timestamp,inspiration_book_id,inspiration_book_title,main_character,location,main_problem,target_language" {
		t.Fatalf("unexpected columns %v", row.Columns)
	}
	if row.Len() != 1 {
		t.Fatalf("expected one row, got %d", row.Len())
	}
	want := []string{"2024-05-01 10:00:00", "7", "Cinderella (7)", "Fox", "Dark Woods", "Lost key", "Czech"}
	for i, v := range want {
		if row.Rows[0][i] != v {
			t.Fatalf("column %s: got %q want %q", row.Columns[i], row.Rows[0][i], v)
		}
	}
}

func TestRequestRowAbsentInspiration(t *testing.T) {
	row := Request{Timestamp: "2024-05-01 10:00:00"}.Row()
	if v, _ := row.Value(0, ColumnInspirationBookID); v != "" {
		t.Fatalf("expected empty id cell, got %q", v)
	}
	if v, _ := row.Value(0, ColumnInspirationBookTitle); v != "" {
		t.Fatalf("expected empty title cell, got %q", v)
	}
}

func TestFormSummary(t *testing.T) {
	form := Form{
		MainCharacter:    "Brave mouse",
		MainProblem:      strings.Repeat("ж", 60),
		InspirationLabel: "Cinderella (7)",
	}

	s := form.Summary(true)
	if s.Filled != 3 || s.Total != 5 {
		t.Fatalf("expected 3/5, got %d/%d", s.Filled, s.Total)
	}
	if s.ProblemPreview != strings.Repeat("ж", 50)+"..." {
		t.Fatalf("unexpected preview %q", s.ProblemPreview)
	}

	s = form.Summary(false)
	if s.Filled != 2 || s.Inspiration != "" {
		t.Fatalf("unresolved inspiration must not count: %+v", s)
	}
}

func TestSummaryIgnoresBlankFields(t *testing.T) {
	f := Form{MainCharacter: "  Fox \n", Location: "   ", MainProblem: "\t", InspirationLabel: " "}
	s := f.Summary(false)
	if s.Filled != 1 {
		t.Fatalf("expected 1 filled field, got %d", s.Filled)
	}
	if s.MainCharacter != "  Fox \n" {
		t.Fatalf("summary must keep the entered text, got %q", s.MainCharacter)
	}
	if s.ProblemPreview != "" {
		t.Fatalf("blank problem must not produce a preview, got %q", s.ProblemPreview)
	}
	if f.HasInspiration() {
		t.Fatal("blank label is not an inspiration")
	}
}

func TestGeneratedFromRow(t *testing.T) {
	tbl := table.New("fairytale", "timestamp", "location")
	_ = tbl.Append("Once upon a time", "2024-05-01 10:00:00", "Cloud City")

	g, ok := GeneratedFromRow(tbl, 0)
	if !ok {
		t.Fatal("expected fairytale column")
	}
	if g.Fairytale != "Once upon a time" {
		t.Fatalf("unexpected text %q", g.Fairytale)
	}
	if !g.Location.Present || g.Location.Value != "Cloud City" {
		t.Fatalf("unexpected location %+v", g.Location)
	}
	if g.MainCharacter.Present {
		t.Fatal("main character should be absent")
	}

	if _, ok := GeneratedFromRow(table.New("text"), 0); ok {
		t.Fatal("expected missing fairytale column")
	}
}
