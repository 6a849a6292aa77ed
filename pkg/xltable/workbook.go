package xltable

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ukaji3/xltable-go/pkg/xltable/locator"
	"github.com/ukaji3/xltable-go/pkg/xltable/mapper"
	"github.com/ukaji3/xltable-go/pkg/xltable/models"
	"github.com/ukaji3/xltable-go/pkg/xltable/ooxml"
	"github.com/ukaji3/xltable-go/pkg/xltable/parser"
)

// Workbook is an open spreadsheet file. It is not safe for concurrent use.
type Workbook struct {
	pkg  *ooxml.Package
	opts Options
	log  zerolog.Logger
}

// Open opens the workbook at path.
func Open(path string, opts Options) (*Workbook, error) {
	log := opts.logger()
	pkg, err := ooxml.Open(path, opts.Writable, ooxml.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &Workbook{pkg: pkg, opts: opts, log: log}, nil
}

// With opens the workbook at path, passes it to fn and closes it whatever fn
// returns. A close error is reported alongside fn's error.
func With(path string, opts Options, fn func(*Workbook) error) error {
	wb, err := Open(path, opts)
	if err != nil {
		return err
	}
	fnErr := fn(wb)
	return errors.Join(fnErr, wb.Close())
}

// Close releases the workbook. Unsaved changes are discarded. Closing twice
// is a no-op.
func (w *Workbook) Close() error {
	return w.pkg.Close()
}

// Path returns the file the workbook was opened from.
func (w *Workbook) Path() string {
	return w.pkg.Path()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	refs := w.pkg.Sheets()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

func (w *Workbook) resolver() parser.Resolver {
	return parser.NewResolver(w.pkg, w.opts.DateLayout)
}

// worksheet returns the named worksheet, or nil when the workbook has no such
// sheet.
func (w *Workbook) worksheet(sheet string) (*ooxml.Worksheet, error) {
	ws, err := w.pkg.Worksheet(sheet)
	if errors.Is(err, ooxml.ErrSheetNotFound) {
		w.log.Debug().Str("sheet", sheet).Msg("sheet not found")
		return nil, nil
	}
	return ws, err
}

func (w *Workbook) project(ws *ooxml.Worksheet) (*models.Table, error) {
	table, err := parser.ProjectSheet(ws, w.resolver())
	if err != nil {
		return nil, NewSheetError(ws.Name, "cells", err)
	}
	if err := w.finish(table); err != nil {
		return nil, err
	}
	return table, nil
}

// finish attaches table candidates to a projected table.
func (w *Workbook) finish(table *models.Table) error {
	if w.opts.ShouldDetectTables() {
		table.TableCandidates = parser.DetectTables(table, w.opts.tableParams())
	}
	w.log.Debug().
		Str("sheet", table.Name).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Msg("sheet projected")
	return nil
}

// DataSet projects every sheet, in workbook order. A workbook without sheets
// yields nil.
func (w *Workbook) DataSet() (*models.DataSet, error) {
	return parser.ProjectAll(w.pkg, w.opts.DateLayout, w.finish)
}

// Table projects one sheet. A missing sheet yields nil.
func (w *Workbook) Table(sheet string) (*models.Table, error) {
	ws, err := w.worksheet(sheet)
	if err != nil || ws == nil {
		return nil, err
	}
	return w.project(ws)
}

// RowAt returns the row at the 0-based index of the sheet's table. A missing
// sheet or an index out of range yields nil.
func (w *Workbook) RowAt(sheet string, index int) (*models.Row, error) {
	table, err := w.Table(sheet)
	if err != nil || table == nil {
		return nil, err
	}
	if index < 0 || index >= len(table.Rows) {
		return nil, nil
	}
	row := table.Rows[index]
	return &row, nil
}

// ColumnAt returns the name of the column at the 0-based index of the sheet's
// table. ok is false for a missing sheet or an index out of range.
func (w *Workbook) ColumnAt(sheet string, index int) (name string, ok bool, err error) {
	table, err := w.Table(sheet)
	if err != nil || table == nil {
		return "", false, err
	}
	if index < 0 || index >= len(table.Columns) {
		return "", false, nil
	}
	return table.Columns[index], true, nil
}

// ValueAt returns the value at 0-based row and column indexes of the sheet's
// table. ok is false for a missing sheet or an index out of range; a null cell
// yields "".
func (w *Workbook) ValueAt(sheet string, row, column int) (value string, ok bool, err error) {
	table, err := w.Table(sheet)
	if err != nil || table == nil {
		return "", false, err
	}
	value, ok = table.Value(row, column)
	return value, ok, nil
}

// CellValue returns the resolved value of the cell at addr. ok is false for a
// missing sheet or cell. A malformed address is an error.
func (w *Workbook) CellValue(sheet, addr string) (value string, ok bool, err error) {
	ws, err := w.worksheet(sheet)
	if err != nil || ws == nil {
		return "", false, err
	}
	c, err := locator.Locate(ws, addr)
	if err != nil || c == nil {
		return "", false, err
	}
	value, err = w.resolver().Resolve(c)
	if err != nil {
		return "", false, NewSheetError(sheet, "cells", err)
	}
	return value, true, nil
}

// SetCellValue stores value at addr with the given type tag, creating the row
// and cell when needed. The change is kept in memory until SaveSheet or Save.
func (w *Workbook) SetCellValue(sheet, addr, value string, kind ooxml.CellType) error {
	if !w.pkg.Writable() {
		return ErrReadOnly
	}
	ws, err := w.pkg.Worksheet(sheet)
	if err != nil {
		return err
	}
	if _, err := locator.Upsert(ws, addr, value, kind, w.opts.placement()); err != nil {
		return NewSheetError(sheet, "upsert", err)
	}
	w.log.Debug().Str("sheet", sheet).Str("cell", addr).Str("type", string(kind)).Msg("cell set")
	return nil
}

// DeleteSheet removes the sheet from the workbook. A missing sheet is a no-op.
func (w *Workbook) DeleteSheet(sheet string) error {
	err := w.pkg.DeleteSheet(sheet)
	if errors.Is(err, ooxml.ErrSheetNotFound) {
		return nil
	}
	return err
}

// SaveSheet writes the pending changes of one sheet into the workbook. A
// missing sheet is a no-op.
func (w *Workbook) SaveSheet(sheet string) error {
	err := w.pkg.CommitSheet(sheet)
	if errors.Is(err, ooxml.ErrSheetNotFound) {
		return nil
	}
	if err != nil {
		return NewSheetError(sheet, "save", err)
	}
	return nil
}

// Save writes every pending change back to the file.
func (w *Workbook) Save() error {
	return w.pkg.Save()
}

// SaveAs writes the workbook with its pending changes to path. The workbook
// stays bound to its original file.
func (w *Workbook) SaveAs(path string) error {
	return w.pkg.SaveAs(path)
}

// PrintAreas returns the print areas of every sheet that has one.
func (w *Workbook) PrintAreas() map[string][]models.Range {
	result := make(map[string][]models.Range)
	for _, dn := range w.pkg.DefinedNames() {
		if !strings.EqualFold(dn.Name, parser.PrintAreaName) {
			continue
		}
		sheet, areas := parser.ParseReference(dn.RefersTo)
		if owner, ok := w.pkg.ScopeSheet(dn); ok {
			sheet = owner
		}
		if sheet != "" && len(areas) > 0 {
			result[sheet] = append(result[sheet], areas...)
		}
	}
	return result
}

// Views slices the sheet's table by its print areas, then by its table
// candidates. A missing sheet yields nil.
func (w *Workbook) Views(sheet string) ([]models.RangeView, error) {
	table, err := w.Table(sheet)
	if err != nil || table == nil {
		return nil, err
	}
	book := filepath.Base(w.pkg.Path())

	var views []models.RangeView
	for _, area := range w.PrintAreas()[sheet] {
		views = append(views, parser.ViewRange(book, table, area, "print_area"))
	}
	for _, ref := range table.TableCandidates {
		area, err := parser.ParseRange(ref)
		if err != nil {
			return nil, NewSheetError(sheet, "tables", err)
		}
		views = append(views, parser.ViewRange(book, table, area, "table"))
	}
	return views, nil
}

// Records maps the sheet's table onto records of type T. A missing sheet
// yields nil.
func Records[T any](w *Workbook, sheet string, schema *mapper.Schema[T]) ([]T, error) {
	table, err := w.Table(sheet)
	if err != nil || table == nil {
		return nil, err
	}
	records, err := mapper.Map(schema, table)
	if err != nil {
		return records, NewSheetError(sheet, "records", err)
	}
	return records, nil
}
