package models

// DataSet holds one table per worksheet of a workbook.
type DataSet struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Tables is in workbook sheet order.
	Tables []*Table `json:"tables"`
}

// Table returns the table named name, or nil.
func (d *DataSet) Table(name string) *Table {
	if d == nil {
		return nil
	}
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}
