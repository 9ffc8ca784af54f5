// Package models defines core data structures for datasets, chat entries, and chart specs.
package models

// Table is a parsed tabular dataset: ordered rows over named columns.
// The first row of the source file is treated as the header.
type Table struct {
	Filename string     `json:"filename"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// NumRows returns the number of data rows (excluding the header).
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of named columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Empty reports whether the table holds no columns and no rows.
func (t *Table) Empty() bool {
	return t.NumColumns() == 0 && t.NumRows() == 0
}

// Head returns up to n data rows, for passing a sample to the answering engine.
func (t *Table) Head(n int) [][]string {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}
