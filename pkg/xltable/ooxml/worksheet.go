package ooxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Worksheet is a loaded worksheet part. Only sheetData is modelled; everything
// around it is kept as raw bytes and written back unchanged.
type Worksheet struct {
	SheetRef
	Rows []*Row

	head  []byte
	tail  []byte
	dirty bool
}

// MarkDirty flags the worksheet for the next commit.
func (ws *Worksheet) MarkDirty() {
	ws.dirty = true
}

// Dirty reports whether the rows changed since the last commit.
func (ws *Worksheet) Dirty() bool {
	return ws.dirty
}

// CellCount returns the number of cell elements across all rows.
func (ws *Worksheet) CellCount() int {
	n := 0
	for _, row := range ws.Rows {
		n += len(row.Cells)
	}
	return n
}

// Marshal renders the worksheet part with the current rows.
func (ws *Worksheet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(ws.head)
	if len(ws.Rows) == 0 {
		buf.WriteString("<sheetData/>")
	} else {
		buf.WriteString("<sheetData>")
		enc := xml.NewEncoder(&buf)
		for _, row := range ws.Rows {
			if err := enc.EncodeElement(row, xml.StartElement{Name: xml.Name{Local: "row"}}); err != nil {
				return nil, fmt.Errorf("encode row %d: %w", row.Index, err)
			}
		}
		if err := enc.Flush(); err != nil {
			return nil, err
		}
		buf.WriteString("</sheetData>")
	}
	buf.Write(ws.tail)
	return buf.Bytes(), nil
}

func parseWorksheet(ref SheetRef, data []byte) (*Worksheet, error) {
	ws := &Worksheet{SheetRef: ref}
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		start := decoder.InputOffset()
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sheetData" {
			continue
		}
		var sd xlsxSheetData
		if err := decoder.DecodeElement(&sd, &se); err != nil {
			return nil, err
		}
		end := decoder.InputOffset()
		ws.head = append([]byte(nil), data[:start]...)
		ws.tail = append([]byte(nil), data[end:]...)
		ws.Rows = sd.Rows
		for _, row := range ws.Rows {
			row.Attrs = localAttrs(row.Attrs)
			for _, c := range row.Cells {
				c.Attrs = localAttrs(c.Attrs)
			}
		}
		return ws, nil
	}

	return nil, errors.New("worksheet has no sheetData element")
}

// localAttrs drops namespaced extension attributes (x14ac:dyDescent and the
// like) so re-encoded rows do not carry generated namespace prefixes.
func localAttrs(attrs []xml.Attr) []xml.Attr {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Name.Space == "" {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
