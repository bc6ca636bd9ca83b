package book

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	idColumn    = "book_id"
	titleColumn = "title"
)

// Book is a reference title offered as story inspiration.
type Book struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LoadCSV 读取书目文件，文件必须包含 book_id 与 title 两列。
func LoadCSV(path string) ([]Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open books file: %w", err)
	}
	defer f.Close()

	books, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read books file %s: %w", path, err)
	}
	return books, nil
}

// ReadCSV parses a header-led CSV stream into books. Extra columns are ignored.
func ReadCSV(r io.Reader) ([]Book, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, err
	}

	idIdx, titleIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case idColumn:
			idIdx = i
		case titleColumn:
			titleIdx = i
		}
	}
	if idIdx < 0 || titleIdx < 0 {
		return nil, fmt.Errorf("header must contain %q and %q columns", idColumn, titleColumn)
	}

	var books []Book
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if idIdx >= len(record) || titleIdx >= len(record) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(idIdx, titleIdx)+1, len(record))
		}
		books = append(books, Book{
			ID:    strings.TrimSpace(record[idIdx]),
			Title: strings.TrimSpace(record[titleIdx]),
		})
	}
	return books, nil
}
