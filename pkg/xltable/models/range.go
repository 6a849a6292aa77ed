package models

// Range represents cell coordinate bounds, e.g. a print area or a table candidate.
type Range struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// ContainsRow reports whether row r lies between R1 and R2.
func (a Range) ContainsRow(r int) bool {
	return r >= a.R1 && r <= a.R2
}

// ContainsColumn reports whether column c lies between C1 and C2.
func (a Range) ContainsColumn(c int) bool {
	return c >= a.C1 && c <= a.C2
}

// RangeView represents a slice of a sheet restricted to a range.
type RangeView struct {
	// BookName is the workbook name owning the range.
	BookName string `json:"book_name"`
	// SheetName is the sheet name owning the range.
	SheetName string `json:"sheet_name"`
	// Kind tells where the range came from: "print_area" or "table".
	Kind string `json:"kind"`
	// Area is the range bounds.
	Area Range `json:"area"`
	// Columns lists the table columns inside the range, in table order.
	Columns []string `json:"columns"`
	// Rows contains rows within the range, restricted to its columns.
	Rows []Row `json:"rows,omitempty"`
}
