package xltable

import (
	"fmt"

	"github.com/ukaji3/xltable-go/pkg/xltable/ooxml"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = ooxml.ErrFileNotFound

// ErrInvalidFormat indicates the input file is not a valid xlsx package.
var ErrInvalidFormat = ooxml.ErrInvalidFormat

// ErrSheetNotFound indicates a write against a sheet the workbook lacks.
// Reads report a missing sheet as an absent result instead.
var ErrSheetNotFound = ooxml.ErrSheetNotFound

// ErrReadOnly indicates a write on a workbook opened without Writable.
var ErrReadOnly = ooxml.ErrReadOnly

// ErrClosed indicates use of a closed workbook.
var ErrClosed = ooxml.ErrClosed

// SheetError represents an error while working on one sheet.
type SheetError struct {
	SheetName string
	Component string // "cells", "tables", "records", "upsert", "save"
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheetName, component string, err error) *SheetError {
	return &SheetError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
