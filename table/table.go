// Package table holds the small in-memory, column-named string table that
// both CSV files and spreadsheet sheets are loaded into.
package table

import (
	"errors"
	"fmt"
)

var ErrColumnNotFound = errors.New("column not found")

// Table is an ordered set of named columns over rows of string cells. Every
// row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New builds a table, padding or truncating each row to the header width.
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}

	for _, row := range rows {
		t.Rows = append(t.Rows, fit(row, len(columns)))
	}

	return t
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}

	return -1
}

func (t *Table) mustIndex(name string) (int, error) {
	i := t.Index(name)
	if i < 0 {
		return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	return i, nil
}

// Column returns a copy of every cell in the named column.
func (t *Table) Column(name string) ([]string, error) {
	i, err := t.mustIndex(name)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, row[i])
	}

	return out, nil
}

// Unique returns the distinct values of the named column in first-seen order.
func (t *Table) Unique(name string) ([]string, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out, nil
}

// Select returns a new table containing only the named columns, in the order
// given.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		i, err := t.mustIndex(name)
		if err != nil {
			return nil, err
		}
		idx = append(idx, i)
	}

	return t.project(idx), nil
}

// Drop returns a new table without the named columns. Every name must exist.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[int]struct{}, len(names))
	for _, name := range names {
		i, err := t.mustIndex(name)
		if err != nil {
			return nil, err
		}
		drop[i] = struct{}{}
	}

	idx := make([]int, 0, len(t.Columns))
	for i := range t.Columns {
		if _, exists := drop[i]; !exists {
			idx = append(idx, i)
		}
	}

	return t.project(idx), nil
}

// DropFunc returns a new table without the columns for which fn is true.
func (t *Table) DropFunc(fn func(column string) bool) *Table {
	idx := make([]int, 0, len(t.Columns))
	for i, col := range t.Columns {
		if !fn(col) {
			idx = append(idx, i)
		}
	}

	return t.project(idx)
}

// Head returns a new table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}

	return New(t.Columns, t.Rows[:n])
}

func (t *Table) project(idx []int) *Table {
	out := &Table{
		Columns: make([]string, len(idx)),
		Rows:    make([][]string, len(t.Rows)),
	}
	for j, i := range idx {
		out.Columns[j] = t.Columns[i]
	}
	for r, row := range t.Rows {
		newRow := make([]string, len(idx))
		for j, i := range idx {
			newRow[j] = row[i]
		}
		out.Rows[r] = newRow
	}

	return out
}
