package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xltable-go/pkg/xltable/address"
	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

// PrintAreaName is the defined name holding a sheet's print area.
const PrintAreaName = "_xlnm.Print_Area"

// ParseReference parses a defined name reference into its sheet name and
// ranges. Format: 'Sheet Name'!$A$1:$D$10,'Sheet Name'!$F$1:$G$4 or
// Sheet1!$A$1:$D$10. Parts that are not ranges are skipped.
func ParseReference(ref string) (string, []models.Range) {
	var (
		sheetName string
		areas     []models.Range
	)
	for _, part := range splitReference(ref) {
		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		sheet := unquoteSheet(part[:idx])
		if sheetName == "" {
			sheetName = sheet
		}
		if area, err := ParseRange(part[idx+1:]); err == nil {
			areas = append(areas, area)
		}
	}
	return sheetName, areas
}

// splitReference splits on commas outside quoted sheet names.
func splitReference(ref string) []string {
	var (
		parts  []string
		quoted bool
		start  int
	)
	for i, r := range ref {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == ',' && !quoted:
			parts = append(parts, strings.TrimSpace(ref[start:i]))
			start = i + 1
		}
	}
	parts = append(parts, strings.TrimSpace(ref[start:]))
	return parts
}

func unquoteSheet(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "''", "'")
}

// ParseRange parses a range such as $A$1:$D$10 or B2:C4. A single cell is a
// one-cell range.
func ParseRange(s string) (models.Range, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "$", "")
	start, end, found := strings.Cut(s, ":")
	if !found {
		end = start
	}

	c1, r1, err := coordinates(start)
	if err != nil {
		return models.Range{}, err
	}
	c2, r2, err := coordinates(end)
	if err != nil {
		return models.Range{}, err
	}
	return models.Range{
		R1: min(r1, r2),
		C1: min(c1, c2),
		R2: max(r1, r2),
		C2: max(c1, c2),
	}, nil
}

func coordinates(cell string) (int, int, error) {
	col, row, err := address.Parse(cell)
	if err != nil {
		return 0, 0, err
	}
	n, err := address.ColumnIndex(col)
	if err != nil {
		return 0, 0, err
	}
	return n, row, nil
}

// FormatRange renders a range as A1:D10.
func FormatRange(a models.Range) (string, error) {
	start, err := address.ColumnName(a.C1)
	if err != nil {
		return "", err
	}
	end, err := address.ColumnName(a.C2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d:%s%d", start, a.R1, end, a.R2), nil
}

// ViewRange restricts a projected table to the rows and columns of area.
func ViewRange(bookName string, t *models.Table, area models.Range, kind string) models.RangeView {
	view := models.RangeView{
		BookName:  bookName,
		SheetName: t.Name,
		Kind:      kind,
		Area:      area,
		Columns:   []string{},
	}

	inside := make(map[string]bool)
	for _, col := range t.Columns {
		n, err := address.ColumnIndex(col)
		if err == nil && area.ContainsColumn(n) {
			inside[col] = true
			view.Columns = append(view.Columns, col)
		}
	}

	for _, row := range t.Rows {
		if !area.ContainsRow(row.Number) {
			continue
		}
		r := models.NewRow(row.Number)
		for col, v := range row.Cells {
			if inside[col] {
				r.Cells[col] = v
			}
		}
		view.Rows = append(view.Rows, r)
	}
	return view
}
