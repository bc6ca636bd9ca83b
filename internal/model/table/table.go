package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Table is a row-oriented snapshot of a storage table.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// New creates a table with the given header.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row. Short rows are padded with empty cells.
func (t *Table) Append(values ...string) error {
	if len(values) > len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	row := make([]string, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table is absent or has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the header contains column.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Value returns the cell at row/column and whether it exists.
func (t *Table) Value(row int, column string) (string, bool) {
	idx := t.Index(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	r := t.Rows[row]
	if idx >= len(r) {
		return "", true
	}
	return r[idx], true
}

// Record 将一行转换为 列名->值 的映射
func (t *Table) Record(row int) map[string]string {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	rec := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		if i < len(t.Rows[row]) {
			rec[c] = t.Rows[row][i]
		} else {
			rec[c] = ""
		}
	}
	return rec
}

// MarshalCSV encodes the header and all rows as RFC 4180 CSV.
func (t *Table) MarshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCSV decodes a header-led CSV stream. An empty stream yields an empty table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := New(header...)
	if err := t.appendRecords(reader); err != nil {
		return nil, err
	}
	return t, nil
}

// AppendCSV appends the rows of a CSV stream that carries no header line.
func (t *Table) AppendCSV(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return t.appendRecords(reader)
}

func (t *Table) appendRecords(reader *csv.Reader) error {
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read csv row: %w", err)
		}
		if len(record) > len(t.Columns) {
			line, _ := reader.FieldPos(0)
			return fmt.Errorf("line %d: %d fields for %d columns", line, len(record), len(t.Columns))
		}
		if err := t.Append(record...); err != nil {
			return err
		}
	}
}
