package parser

import (
	"github.com/ukaji3/xltable-go/pkg/xltable/address"
	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	DensityMin       float64
	CoverageMin      float64
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		CoverageMin:      0.2,
		MinNonemptyCells: 3,
	}
}

type gridCell struct {
	row, col int
}

// DetectTables detects the table-like region of a projected sheet.
// Returns a list of cell ranges (e.g., "A1:D10") that likely represent tables.
func DetectTables(t *models.Table, params TableDetectionParams) []string {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}

	cells := nonEmptyCells(t)
	if len(cells) < params.MinNonemptyCells || len(cells) == 0 {
		return nil
	}

	minRow, maxRow, minCol, maxCol := findDataBounds(cells)
	totalCells := (maxRow - minRow + 1) * (maxCol - minCol + 1)
	density := float64(len(cells)) / float64(totalCells)
	if density < params.DensityMin {
		return nil
	}

	rowsWithData := make(map[int]bool)
	for _, c := range cells {
		rowsWithData[c.row] = true
	}
	coverage := float64(len(rowsWithData)) / float64(maxRow-minRow+1)
	if coverage < params.CoverageMin {
		return nil
	}

	ref, err := FormatRange(models.Range{R1: minRow, C1: minCol, R2: maxRow, C2: maxCol})
	if err != nil {
		return nil
	}
	return []string{ref}
}

// nonEmptyCells lists the grid positions of cells holding a non-empty value.
// Columns beyond the sheet limit are left out.
func nonEmptyCells(t *models.Table) []gridCell {
	colNums := make(map[string]int, len(t.Columns))
	for _, name := range t.Columns {
		if n, err := address.ColumnIndex(name); err == nil {
			colNums[name] = n
		}
	}

	var cells []gridCell
	for i, row := range t.Rows {
		rowNum := row.Number
		if rowNum == 0 {
			rowNum = i + 1
		}
		for name, v := range row.Cells {
			n, ok := colNums[name]
			if !ok || v == "" {
				continue
			}
			cells = append(cells, gridCell{row: rowNum, col: n})
		}
	}
	return cells
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(cells []gridCell) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = cells[0].row, cells[0].row
	minCol, maxCol = cells[0].col, cells[0].col

	for _, c := range cells[1:] {
		if c.row < minRow {
			minRow = c.row
		}
		if c.row > maxRow {
			maxRow = c.row
		}
		if c.col < minCol {
			minCol = c.col
		}
		if c.col > maxCol {
			maxCol = c.col
		}
	}

	return
}
