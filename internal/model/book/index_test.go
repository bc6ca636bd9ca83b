package book

import (
	"fmt"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleBooks() []Book {
	return []Book{
		{ID: "42", Title: "The Snow Queen"},
		{ID: "7", Title: "Cinderella"},
		{ID: "13", Title: "Hansel and Gretel"},
		{ID: "8", Title: "Cinderella"},
	}
}

func TestIndexLabelsSorted(t *testing.T) {
	idx := NewIndex(sampleBooks())

	want := []string{
		"Cinderella (7)",
		"Cinderella (8)",
		"Hansel and Gretel (13)",
		"The Snow Queen (42)",
	}
	if diff := cmp.Diff(want, idx.Labels()); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexRoundTripsEveryLabel(t *testing.T) {
	books := sampleBooks()
	for i := 0; i < 50; i++ {
		books = append(books, Book{ID: fmt.Sprintf("id-%02d", i), Title: fmt.Sprintf("Tale %d", 50-i)})
	}
	idx := NewIndex(books)
	labels := idx.Labels()

	if len(labels) != len(books) {
		t.Fatalf("expected %d labels, got %d", len(books), len(labels))
	}
	if !sort.StringsAreSorted(labels) {
		t.Fatal("labels are not sorted")
	}
	for _, b := range books {
		id, ok := idx.Lookup(Label(b))
		if !ok {
			t.Fatalf("label %q not found", Label(b))
		}
		if id != b.ID {
			t.Fatalf("label %q decoded to %q, want %q", Label(b), id, b.ID)
		}
	}
}

func TestIndexLookupUnknownLabel(t *testing.T) {
	idx := NewIndex(sampleBooks())
	if id, ok := idx.Lookup("Cinderella"); ok {
		t.Fatalf("expected absent, got %q", id)
	}
}

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex(nil)
	if got := idx.Labels(); len(got) != 0 {
		t.Fatalf("expected no labels, got %v", got)
	}
	if _, ok := idx.Lookup("anything (1)"); ok {
		t.Fatal("expected absent lookup on empty index")
	}
}

func TestIndexLabelsReturnsCopy(t *testing.T) {
	idx := NewIndex(sampleBooks())
	labels := idx.Labels()
	labels[0] = "mutated"
	if idx.Labels()[0] == "mutated" {
		t.Fatal("Labels exposed internal state")
	}
}
