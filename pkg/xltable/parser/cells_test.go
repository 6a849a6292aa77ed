package parser

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xltable-go/internal/xlsxtest"
	"github.com/ukaji3/xltable-go/pkg/xltable/address"
	"github.com/ukaji3/xltable-go/pkg/xltable/models"
	"github.com/ukaji3/xltable-go/pkg/xltable/ooxml"
)

func openFixture(t *testing.T, fx xlsxtest.Fixture) *ooxml.Package {
	t.Helper()
	p, err := ooxml.Open(xlsxtest.Write(t, "book.xlsx", fx), false)
	if err != nil {
		t.Fatalf("Failed to open fixture: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestProjectSheet(t *testing.T) {
	p := openFixture(t, xlsxtest.Fixture{
		SharedStrings: []string{"Name", "Age", "Alice"},
		Sheets: []xlsxtest.Sheet{{Name: "People", SheetData: `<row r="1"><c r="A1" t="s"><v>0</v></c><c r="C1" t="s"><v>1</v></c></row>` +
			`<row r="2"><c r="B2" t="b"><v>1</v></c><c r="A2" t="s"><v>2</v></c><c r="C2" t="n"><v>30.0</v></c></row>` +
			`<row r="3"/>`}},
	})
	ws, err := p.Worksheet("People")
	if err != nil {
		t.Fatalf("Worksheet failed: %v", err)
	}

	table, err := ProjectSheet(ws, NewResolver(p, ""))
	if err != nil {
		t.Fatalf("ProjectSheet failed: %v", err)
	}

	if table.Name != "People" {
		t.Errorf("Expected table name People, got %q", table.Name)
	}
	if !reflect.DeepEqual(table.Columns, []string{"A", "C", "B"}) {
		t.Errorf("Expected columns [A C B], got %v", table.Columns)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(table.Rows))
	}

	if table.Rows[0].Cells["A"] != "Name" || table.Rows[0].Cells["C"] != "Age" {
		t.Errorf("Unexpected header row %v", table.Rows[0].Cells)
	}
	if _, ok := table.Rows[0].Get("B"); ok {
		t.Errorf("B1 should be null")
	}
	if table.Rows[1].Cells["A"] != "Alice" || table.Rows[1].Cells["B"] != "TRUE" || table.Rows[1].Cells["C"] != "30.0" {
		t.Errorf("Unexpected data row %v", table.Rows[1].Cells)
	}
	if table.Rows[2].Number != 3 || len(table.Rows[2].Cells) != 0 {
		t.Errorf("Expected empty row 3, got %+v", table.Rows[2])
	}
}

func TestProjectSheetEmpty(t *testing.T) {
	p := openFixture(t, xlsxtest.Fixture{Sheets: []xlsxtest.Sheet{{Name: "Blank"}}})
	ws, err := p.Worksheet("Blank")
	if err != nil {
		t.Fatalf("Worksheet failed: %v", err)
	}

	table, err := ProjectSheet(ws, NewResolver(p, ""))
	if err != nil {
		t.Fatalf("ProjectSheet failed: %v", err)
	}
	if table == nil || len(table.Columns) != 0 || len(table.Rows) != 0 {
		t.Errorf("Expected an empty table, got %+v", table)
	}

	nilTable, err := ProjectSheet(nil, Resolver{})
	if err != nil || nilTable != nil {
		t.Errorf("Expected nil table for nil worksheet, got %v, %v", nilTable, err)
	}
}

func TestProjectSheetColumnsGrowMonotonically(t *testing.T) {
	v := "x"
	rows := []*ooxml.Row{
		{Index: 1, Cells: []*ooxml.Cell{{Ref: "D1", Value: &v}}},
		{Index: 2, Cells: []*ooxml.Cell{{Ref: "B2", Value: &v}, {Ref: "D2", Value: &v}}},
		{Index: 3, Cells: []*ooxml.Cell{{Ref: "A3", Value: &v}}},
		{Index: 4, Cells: []*ooxml.Cell{{Ref: "B4", Value: &v}, {Ref: "E4", Value: &v}}},
	}

	var prev []string
	for n := 0; n <= len(rows); n++ {
		ws := &ooxml.Worksheet{SheetRef: ooxml.SheetRef{Name: "S"}, Rows: rows[:n]}
		table, err := ProjectSheet(ws, Resolver{})
		if err != nil {
			t.Fatalf("ProjectSheet failed: %v", err)
		}
		if len(table.Columns) < len(prev) || !reflect.DeepEqual(table.Columns[:len(prev)], prev) {
			t.Errorf("Columns after %d rows %v do not extend %v", n, table.Columns, prev)
		}
		prev = table.Columns
	}
	if !reflect.DeepEqual(prev, []string{"D", "B", "A", "E"}) {
		t.Errorf("Expected final columns [D B A E], got %v", prev)
	}
}

func TestProjectSheetImplicitReferences(t *testing.T) {
	a, b := "a", "b"
	ws := &ooxml.Worksheet{Rows: []*ooxml.Row{
		{Cells: []*ooxml.Cell{{Value: &a}, {Value: &b}}},
		{Cells: []*ooxml.Cell{{Ref: "C2", Value: &a}, {Value: &b}}},
	}}

	table, err := ProjectSheet(ws, Resolver{})
	if err != nil {
		t.Fatalf("ProjectSheet failed: %v", err)
	}
	if !reflect.DeepEqual(table.Columns, []string{"A", "B", "C", "D"}) {
		t.Errorf("Expected columns [A B C D], got %v", table.Columns)
	}
	if table.Rows[0].Number != 1 || table.Rows[1].Number != 2 {
		t.Errorf("Expected implicit row numbers 1 and 2, got %d and %d", table.Rows[0].Number, table.Rows[1].Number)
	}
	if table.Rows[1].Cells["D"] != "b" {
		t.Errorf("Expected D2 = b, got %v", table.Rows[1].Cells)
	}
}

func TestProjectSheetErrors(t *testing.T) {
	idx := "9"
	ws := &ooxml.Worksheet{Rows: []*ooxml.Row{{Index: 1, Cells: []*ooxml.Cell{{Ref: "A1", Type: ooxml.CellTypeSharedString, Value: &idx}}}}}
	if _, err := ProjectSheet(ws, Resolver{}); !errors.Is(err, ErrInvalidSharedStringIndex) {
		t.Errorf("Expected ErrInvalidSharedStringIndex, got %v", err)
	}

	ws = &ooxml.Worksheet{Rows: []*ooxml.Row{{Index: 1, Cells: []*ooxml.Cell{{Ref: "1A", Value: &idx}}}}}
	if _, err := ProjectSheet(ws, Resolver{}); !errors.Is(err, address.ErrMalformedAddress) {
		t.Errorf("Expected ErrMalformedAddress, got %v", err)
	}
}

func TestProjectAll(t *testing.T) {
	// Create a temporary Excel file for testing
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Header1")
	f.SetCellValue(sheetName, "B1", "Header2")
	f.SetCellValue(sheetName, "A2", 100)
	f.SetCellValue(sheetName, "B2", 200.5)
	f.SetCellValue(sheetName, "A3", "Text")
	if _, err := f.NewSheet("Second"); err != nil {
		t.Fatalf("Failed to add sheet: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	p, err := ooxml.Open(tmpFile, false)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer p.Close()

	ds, err := ProjectAll(p, "")
	if err != nil {
		t.Fatalf("ProjectAll failed: %v", err)
	}
	if ds.BookName != "test.xlsx" {
		t.Errorf("Expected book name test.xlsx, got %q", ds.BookName)
	}
	if len(ds.Tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(ds.Tables))
	}

	sheet := ds.Table("Sheet1")
	if sheet == nil || len(sheet.Rows) != 3 {
		t.Fatalf("Expected 3 rows in Sheet1, got %+v", sheet)
	}
	if sheet.Rows[0].Cells["A"] != "Header1" {
		t.Errorf("Expected 'Header1', got %v", sheet.Rows[0].Cells["A"])
	}
	if sheet.Rows[1].Cells["A"] != "100" || sheet.Rows[1].Cells["B"] != "200.5" {
		t.Errorf("Unexpected numeric row %v", sheet.Rows[1].Cells)
	}
	if second := ds.Table("Second"); second == nil || len(second.Rows) != 0 {
		t.Errorf("Expected empty table for Second, got %+v", second)
	}
	if ds.Table("Missing") != nil {
		t.Errorf("Expected nil for a missing table")
	}
}

func TestProjectAllWithoutSheets(t *testing.T) {
	p := openFixture(t, xlsxtest.Fixture{})
	ds, err := ProjectAll(p, "")
	if err != nil || ds != nil {
		t.Errorf("Expected nil data set without error, got %v, %v", ds, err)
	}
}

func TestProjectAllHooks(t *testing.T) {
	p := openFixture(t, xlsxtest.Fixture{
		Sheets: []xlsxtest.Sheet{
			{Name: "One", SheetData: `<row r="1"><c r="A1"><v>1</v></c></row>`},
			{Name: "Two"},
		},
	})

	var seen []string
	ds, err := ProjectAll(p, "", func(table *models.Table) error {
		seen = append(seen, table.Name)
		table.TableCandidates = []string{"A1:A1"}
		return nil
	})
	if err != nil {
		t.Fatalf("ProjectAll failed: %v", err)
	}
	if !reflect.DeepEqual(seen, []string{"One", "Two"}) {
		t.Errorf("Expected hooks for [One Two], got %v", seen)
	}
	if got := ds.Table("Two").TableCandidates; !reflect.DeepEqual(got, []string{"A1:A1"}) {
		t.Errorf("Expected hook output on Two, got %v", got)
	}

	boom := errors.New("boom")
	_, err = ProjectAll(p, "", func(table *models.Table) error {
		if table.Name == "Two" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected hook error, got %v", err)
	}
}
