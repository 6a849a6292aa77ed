package ooxml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// CellType is the value of a cell's t attribute.
type CellType string

const (
	CellTypeUnset        CellType = ""
	CellTypeSharedString CellType = "s"
	CellTypeBool         CellType = "b"
	CellTypeDate         CellType = "d"
	CellTypeNumber       CellType = "n"
	CellTypeInlineString CellType = "inlineStr"
	CellTypeString       CellType = "str"
	CellTypeError        CellType = "e"
)

// ParseCellType accepts either the raw attribute value or a readable name
// ("shared", "bool", "date", "number", "inline", "string", "error").
func ParseCellType(s string) (CellType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unset", "none":
		return CellTypeUnset, nil
	case "s", "shared", "sharedstring":
		return CellTypeSharedString, nil
	case "b", "bool", "boolean":
		return CellTypeBool, nil
	case "d", "date":
		return CellTypeDate, nil
	case "n", "number", "numeric":
		return CellTypeNumber, nil
	case "inlinestr", "inline", "inlinestring":
		return CellTypeInlineString, nil
	case "str", "string":
		return CellTypeString, nil
	case "e", "error":
		return CellTypeError, nil
	}
	return CellTypeUnset, fmt.Errorf("unknown cell type %q", s)
}

// Row maps the row element of a worksheet's sheetData.
type Row struct {
	// Index is the 1-based row number (r attribute), 0 when omitted.
	Index int        `xml:"r,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
	Cells []*Cell    `xml:"c"`
}

// Cell maps the c element. It is the raw, unresolved form of a cell.
type Cell struct {
	// Ref is the cell address (r attribute), e.g. "B7".
	Ref     string     `xml:"r,attr,omitempty"`
	Type    CellType   `xml:"t,attr,omitempty"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Formula *Formula   `xml:"f,omitempty"`
	Value   *string    `xml:"v,omitempty"`
	Inline  *RichText  `xml:"is,omitempty"`
}

// HasContent reports whether the cell carries a value or an inline string.
func (c *Cell) HasContent() bool {
	return c != nil && (c.Value != nil || c.Inline != nil)
}

// RawText returns the unresolved text of the cell: the v element when present,
// otherwise the inline string.
func (c *Cell) RawText() string {
	switch {
	case c == nil:
		return ""
	case c.Value != nil:
		return *c.Value
	case c.Inline != nil:
		return c.Inline.String()
	}
	return ""
}

// Formula maps the f element.
type Formula struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Text  string     `xml:",chardata"`
}

// RichText maps si (shared string item) and is (inline string) elements.
type RichText struct {
	T *Text `xml:"t,omitempty"`
	R []Run `xml:"r,omitempty"`
}

// String concatenates the plain text and every run.
func (rt *RichText) String() string {
	if rt == nil {
		return ""
	}
	var b strings.Builder
	if rt.T != nil {
		b.WriteString(rt.T.Value)
	}
	for _, r := range rt.R {
		if r.T != nil {
			b.WriteString(r.T.Value)
		}
	}
	return b.String()
}

// NewRichText wraps s into a single t element, preserving surrounding spaces.
func NewRichText(s string) *RichText {
	t := &Text{Value: s}
	if strings.TrimSpace(s) != s {
		t.Space = "preserve"
	}
	return &RichText{T: t}
}

// Run maps a rich text run.
type Run struct {
	RPr *RawXML `xml:"rPr,omitempty"`
	T   *Text   `xml:"t,omitempty"`
}

// Text maps the t element.
type Text struct {
	Space string `xml:"http://www.w3.org/XML/1998/namespace space,attr,omitempty"`
	Value string `xml:",chardata"`
}

// RawXML keeps an element's children verbatim.
type RawXML struct {
	Inner []byte `xml:",innerxml"`
}

type xlsxSheetData struct {
	Rows []*Row `xml:"row"`
}

type xlsxSST struct {
	SI []RichText `xml:"si"`
}

// SharedStrings is the workbook's shared string table.
type SharedStrings []string

// Lookup returns the string at index i.
func (s SharedStrings) Lookup(i int) (string, bool) {
	if i < 0 || i >= len(s) {
		return "", false
	}
	return s[i], true
}

// SheetRef describes a sheet entry of the workbook.
type SheetRef struct {
	Name  string
	ID    string
	RelID string
	Path  string
}

// DefinedName is a workbook name such as _xlnm.Print_Area.
type DefinedName struct {
	Name string
	// LocalSheetID is the 0-based position of the owning sheet among the
	// workbook's sheet entries, nil for workbook-scoped names.
	LocalSheetID *int
	// RefersTo is the formula text, e.g. 'My Sheet'!$A$1:$D$10.
	RefersTo string
}
