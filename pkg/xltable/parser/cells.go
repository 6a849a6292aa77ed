package parser

import (
	"fmt"
	"path/filepath"

	"github.com/ukaji3/xltable-go/pkg/xltable/address"
	"github.com/ukaji3/xltable-go/pkg/xltable/models"
	"github.com/ukaji3/xltable-go/pkg/xltable/ooxml"
)

// ProjectSheet builds a table from the rows of ws.
// Columns are named after cell address letters in first-seen order; rows keep
// document order, and a row without cells becomes an empty row.
// A nil worksheet yields a nil table.
func ProjectSheet(ws *ooxml.Worksheet, r Resolver) (*models.Table, error) {
	if ws == nil {
		return nil, nil
	}

	table := models.NewTable(ws.Name)
	prevRow := 0
	for _, row := range ws.Rows {
		rowNum := row.Index
		if rowNum == 0 {
			rowNum = prevRow + 1
		}
		prevRow = rowNum

		tableRow := models.NewRow(rowNum)
		prevCol := 0
		for _, c := range row.Cells {
			col, colNum, err := cellColumn(c, prevCol)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum, err)
			}
			prevCol = colNum
			table.AddColumn(col)

			value, err := r.Resolve(c)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum, err)
			}
			tableRow.Cells[col] = value
		}
		table.Rows = append(table.Rows, tableRow)
	}

	return table, nil
}

// cellColumn returns the column letters of c. A cell without an r attribute
// sits right of the previous cell.
func cellColumn(c *ooxml.Cell, prevCol int) (string, int, error) {
	if c.Ref == "" {
		col, err := address.ColumnName(prevCol + 1)
		return col, prevCol + 1, err
	}
	col, err := address.Column(c.Ref)
	if err != nil {
		return "", 0, err
	}
	n, err := address.ColumnIndex(col)
	if err != nil {
		// labels stay opaque; only the implicit-reference fallback needs a number
		n = prevCol + 1
	}
	return col, n, nil
}

// TableHook finishes a projected table, e.g. by attaching table candidates.
type TableHook func(*models.Table) error

// ProjectAll projects every worksheet of pkg in workbook order, passing each
// table through hooks. A workbook without worksheets yields a nil data set.
func ProjectAll(pkg *ooxml.Package, dateLayout string, hooks ...TableHook) (*models.DataSet, error) {
	sheets := pkg.Sheets()
	if len(sheets) == 0 {
		return nil, nil
	}

	r := NewResolver(pkg, dateLayout)
	ds := &models.DataSet{BookName: filepath.Base(pkg.Path())}
	for _, ref := range sheets {
		ws, err := pkg.Worksheet(ref.Name)
		if err != nil {
			return nil, err
		}
		table, err := ProjectSheet(ws, r)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", ref.Name, err)
		}
		for _, hook := range hooks {
			if err := hook(table); err != nil {
				return nil, fmt.Errorf("sheet %q: %w", ref.Name, err)
			}
		}
		ds.Tables = append(ds.Tables, table)
	}
	return ds, nil
}
