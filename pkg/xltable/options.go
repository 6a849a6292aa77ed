// Package xltable reads spreadsheet worksheets as tables of resolved values
// and writes cell values back by address.
package xltable

import (
	"github.com/rs/zerolog"

	"github.com/ukaji3/xltable-go/pkg/xltable/locator"
	"github.com/ukaji3/xltable-go/pkg/xltable/parser"
)

// Options configures how a workbook is opened.
type Options struct {
	// Writable allows SetCellValue, DeleteSheet and the save methods.
	Writable bool
	// DateLayout renders date cells. Empty selects parser.DefaultDateLayout.
	DateLayout string
	// AppendOnly appends new rows and cells at the end of a sheet instead of
	// inserting them at their numeric position.
	AppendOnly bool
	// DetectTables specifies whether projected tables carry table candidates.
	// If nil, defaults to true.
	DetectTables *bool
	// TableParams tunes table detection. If nil, parser.DefaultTableParams is used.
	TableParams *parser.TableDetectionParams
	// Logger receives debug output. If nil, nothing is logged.
	Logger *zerolog.Logger
}

// DefaultOptions returns read-only options.
func DefaultOptions() Options {
	return Options{}
}

// ShouldDetectTables returns whether to detect table candidates.
func (o Options) ShouldDetectTables() bool {
	if o.DetectTables != nil {
		return *o.DetectTables
	}
	return true
}

func (o Options) tableParams() parser.TableDetectionParams {
	if o.TableParams != nil {
		return *o.TableParams
	}
	return parser.DefaultTableParams()
}

func (o Options) placement() locator.Placement {
	if o.AppendOnly {
		return locator.AppendOnly
	}
	return locator.Ordered
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return zerolog.Nop()
}
