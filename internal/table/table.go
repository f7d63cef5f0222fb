// Package table reads and writes the flat row tables the pipelines exchange,
// as CSV or XLSX.
package table

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// New builds a table, padding or truncating rows to the header width.
func New(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, fit(r, len(header)))
	}
	return t
}

func fit(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// Col returns the index of the named column, or -1.
func (t *Table) Col(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row i in the named column; missing columns read
// as empty.
func (t *Table) Value(i int, col string) string {
	c := t.Col(col)
	if c < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][c]
}

// SetColumn replaces the named column, appending it if it does not exist.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return eris.Errorf("table: column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	c := t.Col(name)
	if c < 0 {
		t.Header = append(t.Header, name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], values[i])
		}
		return nil
	}
	for i := range t.Rows {
		t.Rows[i][c] = values[i]
	}
	return nil
}

func format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Read loads a .csv or .xlsx file.
func Read(ctx context.Context, path string) (*Table, error) {
	switch format(path) {
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "table: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(ctx, f, CSVOptions{})
	case "xlsx":
		return ReadXLSX(path, XLSXOptions{})
	default:
		return nil, eris.Errorf("table: unsupported file type %q", filepath.Ext(path))
	}
}

// Write saves t as .csv or .xlsx, creating parent directories.
func Write(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "table: create output dir")
	}
	switch format(path) {
	case "csv":
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "table: create %s", path)
		}
		if err := WriteCSV(f, t); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		return eris.Wrap(f.Close(), "table: close output")
	case "xlsx":
		return WriteXLSX(path, t)
	default:
		return eris.Errorf("table: unsupported file type %q", filepath.Ext(path))
	}
}
