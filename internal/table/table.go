// Package table reads delimited files into an in-memory table with named columns.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is a rectangular view over string cells addressed by column name.
// Column presence is a property of the whole table, not of single rows.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a table from a header and rows. Short rows are padded with
// empty cells, long rows are truncated to the header width.
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]string, 0, len(rows)),
	}
	for i, c := range columns {
		name := strings.TrimSpace(c)
		t.columns[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	for _, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t
}

// ReadCSV parses delimited text whose first record is the header.
func ReadCSV(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	if delim != 0 {
		cr.Comma = delim
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("table has no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return New(header, rows), nil
}

// LoadFile reads a delimited file from disk.
func LoadFile(path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, delim)
}

// Columns returns the header names in file order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Cell returns the value at row i in the named column. ok is false when the
// column does not exist in the table.
func (t *Table) Cell(i int, column string) (value string, ok bool) {
	j, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return "", false
	}
	return t.rows[i][j], true
}
