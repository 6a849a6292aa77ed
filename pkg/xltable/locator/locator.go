// Package locator finds cells of a worksheet by address and creates them on
// demand for writes.
package locator

import (
	"encoding/xml"

	"github.com/ukaji3/xltable-go/pkg/xltable/address"
	"github.com/ukaji3/xltable-go/pkg/xltable/ooxml"
	"github.com/ukaji3/xltable-go/pkg/xltable/parser"
)

// Placement decides where newly created rows and cells go.
type Placement int

const (
	// Ordered inserts new rows by row number and new cells by column number.
	// Existing elements are never moved.
	Ordered Placement = iota
	// AppendOnly appends new rows and cells after the existing ones, tolerating
	// out-of-order and duplicate row numbers.
	AppendOnly
)

// Locate returns the cell at addr, or nil when the sheet has none.
func Locate(ws *ooxml.Worksheet, addr string) (*ooxml.Cell, error) {
	if ws == nil {
		return nil, ooxml.ErrSheetNotFound
	}
	col, rowNum, err := address.Parse(addr)
	if err != nil {
		return nil, err
	}
	row := findRow(ws, rowNum)
	if row == nil {
		return nil, nil
	}
	c, _ := findCell(row, col)
	return c, nil
}

// Upsert finds or creates the cell at addr and stores value in it with the
// given type tag. Repeated upserts of one address reuse the same cell.
func Upsert(ws *ooxml.Worksheet, addr, value string, kind ooxml.CellType, placement Placement) (*ooxml.Cell, error) {
	if ws == nil {
		return nil, ooxml.ErrSheetNotFound
	}
	col, rowNum, err := address.Parse(addr)
	if err != nil {
		return nil, err
	}
	ref, err := address.Format(col, rowNum)
	if err != nil {
		return nil, err
	}

	row := findRow(ws, rowNum)
	if row == nil {
		row = &ooxml.Row{Index: rowNum}
		insertRow(ws, row, placement)
	}
	row.Index = rowNum

	c, colNum := findCell(row, col)
	if c != nil {
		c.Ref = ref
	} else {
		c = &ooxml.Cell{Ref: ref}
		insertCell(row, c, colNum, placement)
		// spans is a hint computed from the original cells
		row.Attrs = dropAttr(row.Attrs, "spans")
	}

	parser.Encode(c, value, kind)
	ws.MarkDirty()
	return c, nil
}

// findRow returns the first row numbered rowNum. Rows without an r attribute
// follow the previous row.
func findRow(ws *ooxml.Worksheet, rowNum int) *ooxml.Row {
	prev := 0
	for _, row := range ws.Rows {
		n := row.Index
		if n == 0 {
			n = prev + 1
		}
		prev = n
		if n == rowNum {
			return row
		}
	}
	return nil
}

// findCell returns the cell in column col, and col's number.
func findCell(row *ooxml.Row, col string) (*ooxml.Cell, int) {
	target, err := address.ColumnIndex(col)
	if err != nil {
		target = 0
	}
	prev := 0
	for _, c := range row.Cells {
		cellCol, n := cellColumn(c, prev)
		prev = n
		if cellCol == col {
			return c, target
		}
	}
	return nil, target
}

func cellColumn(c *ooxml.Cell, prev int) (string, int) {
	if c.Ref == "" {
		name, err := address.ColumnName(prev + 1)
		if err != nil {
			return "", prev + 1
		}
		return name, prev + 1
	}
	col, err := address.Column(c.Ref)
	if err != nil {
		return "", prev
	}
	n, err := address.ColumnIndex(col)
	if err != nil {
		return col, prev
	}
	return col, n
}

func insertRow(ws *ooxml.Worksheet, row *ooxml.Row, placement Placement) {
	if placement == AppendOnly {
		ws.Rows = append(ws.Rows, row)
		return
	}
	at := len(ws.Rows)
	prev := 0
	for i, r := range ws.Rows {
		n := r.Index
		if n == 0 {
			n = prev + 1
		}
		prev = n
		if n > row.Index {
			at = i
			break
		}
	}
	ws.Rows = append(ws.Rows, nil)
	copy(ws.Rows[at+1:], ws.Rows[at:])
	ws.Rows[at] = row
}

func insertCell(row *ooxml.Row, c *ooxml.Cell, colNum int, placement Placement) {
	if placement == AppendOnly || colNum == 0 {
		row.Cells = append(row.Cells, c)
		return
	}
	at := len(row.Cells)
	prev := 0
	for i, existing := range row.Cells {
		_, n := cellColumn(existing, prev)
		prev = n
		if n > colNum {
			at = i
			break
		}
	}
	row.Cells = append(row.Cells, nil)
	copy(row.Cells[at+1:], row.Cells[at:])
	row.Cells[at] = c
}

func dropAttr(attrs []xml.Attr, local string) []xml.Attr {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Name.Local != local {
			out = append(out, a)
		}
	}
	return out
}
