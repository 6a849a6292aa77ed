package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xltable-go/pkg/xltable/ooxml"
)

// DefaultDateLayout renders resolved dates, e.g. "2024/3/9 14:05:00".
const DefaultDateLayout = "2006/1/2 15:04:05"

var (
	// ErrInvalidSharedStringIndex indicates a shared string cell whose value is
	// not an index into the shared string table.
	ErrInvalidSharedStringIndex = errors.New("invalid shared string index")
	// ErrInvalidDateValue indicates a date cell that is neither ISO 8601 nor a serial number.
	ErrInvalidDateValue = errors.New("invalid date value")
	// ErrInvalidNumericValue indicates a number cell that is not a decimal.
	ErrInvalidNumericValue = errors.New("invalid numeric value")
)

// isoLayouts are the forms a t="d" cell may take.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"15:04:05.999999999",
}

// CellError reports a cell whose type tag disagrees with its content.
type CellError struct {
	Ref  string
	Type ooxml.CellType
	Raw  string
	Err  error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %s (t=%q) value %q: %v", e.Ref, e.Type, e.Raw, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// Resolver turns raw cells into their canonical string values.
type Resolver struct {
	Strings    ooxml.SharedStrings
	DateLayout string
	Date1904   bool
}

// NewResolver returns a resolver bound to the shared strings and date system
// of pkg. An empty layout selects DefaultDateLayout.
func NewResolver(pkg *ooxml.Package, layout string) Resolver {
	return Resolver{
		Strings:    pkg.SharedStrings(),
		DateLayout: layout,
		Date1904:   pkg.Date1904(),
	}
}

// Resolve returns the value of c. Cells without a value resolve to "".
func (r Resolver) Resolve(c *ooxml.Cell) (string, error) {
	if !c.HasContent() {
		return "", nil
	}
	raw := c.RawText()

	switch c.Type {
	case ooxml.CellTypeSharedString:
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return "", &CellError{Ref: c.Ref, Type: c.Type, Raw: raw, Err: ErrInvalidSharedStringIndex}
		}
		s, ok := r.Strings.Lookup(idx)
		if !ok {
			return "", &CellError{Ref: c.Ref, Type: c.Type, Raw: raw, Err: ErrInvalidSharedStringIndex}
		}
		return s, nil
	case ooxml.CellTypeBool:
		if raw == "1" {
			return "TRUE", nil
		}
		return "FALSE", nil
	case ooxml.CellTypeDate:
		t, err := r.parseDate(raw)
		if err != nil {
			return "", &CellError{Ref: c.Ref, Type: c.Type, Raw: raw, Err: fmt.Errorf("%w: %v", ErrInvalidDateValue, err)}
		}
		return t.Format(r.layout()), nil
	case ooxml.CellTypeNumber:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return "", &CellError{Ref: c.Ref, Type: c.Type, Raw: raw, Err: fmt.Errorf("%w: %v", ErrInvalidNumericValue, err)}
		}
		return d.StringFixed(max(0, -d.Exponent())), nil
	default:
		return raw, nil
	}
}

func (r Resolver) layout() string {
	if r.DateLayout == "" {
		return DefaultDateLayout
	}
	return r.DateLayout
}

// parseDate accepts ISO 8601 text or a serial day number.
func (r Resolver) parseDate(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
		}
		return excelize.ExcelDateToTime(serial, r.Date1904)
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// Encode stores value in c as a literal of the given kind. Strings are not
// interned into the shared string table; an inline string kind is written as
// an is element, every other kind as v. Any formula is dropped.
func Encode(c *ooxml.Cell, value string, kind ooxml.CellType) {
	c.Type = kind
	c.Formula = nil
	if kind == ooxml.CellTypeInlineString {
		c.Value = nil
		c.Inline = ooxml.NewRichText(value)
		return
	}
	c.Inline = nil
	c.Value = &value
}
