package book

import (
	"fmt"
	"sort"
)

type option struct {
	label string
	id    string
}

// Index maps the "title (id)" labels of a choice list back to book identifiers.
type Index struct {
	options []option
}

// NewIndex builds the sorted label list for the given books.
func NewIndex(books []Book) *Index {
	options := make([]option, 0, len(books))
	for _, b := range books {
		options = append(options, option{label: Label(b), id: b.ID})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].label < options[j].label
	})
	return &Index{options: options}
}

// Label formats the display text offered for a book.
func Label(b Book) string {
	return fmt.Sprintf("%s (%s)", b.Title, b.ID)
}

// Labels returns the display labels in sorted order.
func (x *Index) Labels() []string {
	labels := make([]string, len(x.options))
	for i, opt := range x.options {
		labels[i] = opt.label
	}
	return labels
}

// Lookup returns the identifier behind a label. The first match wins on duplicates.
func (x *Index) Lookup(label string) (string, bool) {
	for _, opt := range x.options {
		if opt.label == label {
			return opt.id, true
		}
	}
	return "", false
}

// Len 返回选项数量
func (x *Index) Len() int {
	return len(x.options)
}
