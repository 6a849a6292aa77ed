// Package models defines the tabular data structures produced from worksheets.
package models

// Row represents one worksheet row projected onto table columns.
type Row struct {
	// Number is the source row number (1-based), 0 if the row had none.
	Number int `json:"r"`
	// Cells maps column name to resolved value. A missing column is a null cell.
	Cells map[string]string `json:"c"`
}

// NewRow returns an empty row for source row number n.
func NewRow(n int) Row {
	return Row{Number: n, Cells: make(map[string]string)}
}

// Get returns the value stored under column and whether the cell exists.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Cells[column]
	return v, ok
}
