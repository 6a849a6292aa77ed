package models

// Table is a dense projection of a worksheet.
type Table struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// Columns holds unique column names in first-seen order.
	Columns []string `json:"columns"`
	// Rows holds rows in document order.
	Rows []Row `json:"rows"`
	// TableCandidates contains cell ranges likely representing tables.
	TableCandidates []string `json:"table_candidates,omitempty"`
}

// NewTable returns an empty table named name.
func NewTable(name string) *Table {
	return &Table{Name: name, Columns: []string{}, Rows: []Row{}}
}

// HasColumn reports whether column is part of the table.
func (t *Table) HasColumn(column string) bool {
	return t.ColumnIndex(column) >= 0
}

// ColumnIndex returns the position of column, or -1.
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// AddColumn appends column if it is not present yet.
func (t *Table) AddColumn(column string) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
}

// Value returns the cell at row index and column index. ok is false when
// either index is out of range; a null cell yields "" with ok true.
func (t *Table) Value(row, column int) (string, bool) {
	if t == nil || row < 0 || column < 0 || row >= len(t.Rows) || column >= len(t.Columns) {
		return "", false
	}
	return t.Rows[row].Cells[t.Columns[column]], true
}

// ColumnValues returns the non-null values of column in row order.
func (t *Table) ColumnValues(column string) []string {
	var out []string
	for _, r := range t.Rows {
		if v, ok := r.Cells[column]; ok {
			out = append(out, v)
		}
	}
	return out
}
