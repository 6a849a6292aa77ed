// Package xlsxtest writes minimal spreadsheet packages for tests.
package xlsxtest

import (
	"archive/zip"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Sheet is one worksheet of a fixture. SheetData is the inner XML of the
// sheetData element, e.g. `<row r="1"><c r="A1"><v>1</v></c></row>`.
type Sheet struct {
	Name      string
	SheetData string
}

// Fixture describes a package to write.
type Fixture struct {
	Sheets        []Sheet
	SharedStrings []string
	// SharedStringsXML replaces the generated si elements when set.
	SharedStringsXML string
	Date1904         bool
	// DefinedNames is the inner XML of the definedNames element, if any.
	DefinedNames string
}

const (
	nsMain = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkg  = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Write stores the fixture as name inside a fresh temporary directory and
// returns its path.
func Write(t testing.TB, name string, fx Fixture) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, part := range fx.parts() {
		w, err := zw.Create(part[0])
		if err != nil {
			t.Fatalf("create part %s: %v", part[0], err)
		}
		if _, err := w.Write([]byte(part[1])); err != nil {
			t.Fatalf("write part %s: %v", part[0], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return p
}

func (fx Fixture) parts() [][2]string {
	var (
		types  strings.Builder
		sheets strings.Builder
		rels   strings.Builder
		parts  [][2]string
	)

	types.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
		`<Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>`)

	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="` + nsPkg + `">`)

	for i, s := range fx.Sheets {
		n := i + 1
		types.WriteString(fmt.Sprintf(`<Override PartName="/xl/worksheets/sheet%d.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>`, n))
		sheets.WriteString(fmt.Sprintf(`<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, html.EscapeString(s.Name), n, n))
		rels.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="%s/worksheet" Target="worksheets/sheet%d.xml"/>`, n, nsRel, n))

		data := "<sheetData/>"
		if s.SheetData != "" {
			data = "<sheetData>" + s.SheetData + "</sheetData>"
		}
		parts = append(parts, [2]string{
			fmt.Sprintf("xl/worksheets/sheet%d.xml", n),
			`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
				`<worksheet xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">` +
				`<dimension ref="A1"/>` + data +
				`<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>` +
				`</worksheet>`,
		})
	}
	types.WriteString(`</Types>`)
	rels.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="%s/sharedStrings" Target="sharedStrings.xml"/>`, len(fx.Sheets)+1, nsRel))
	rels.WriteString(`</Relationships>`)

	workbookPr := ""
	if fx.Date1904 {
		workbookPr = `<workbookPr date1904="1"/>`
	}

	definedNames := ""
	if fx.DefinedNames != "" {
		definedNames = "<definedNames>" + fx.DefinedNames + "</definedNames>"
	}

	sst := fx.SharedStringsXML
	if sst == "" {
		var b strings.Builder
		for _, s := range fx.SharedStrings {
			b.WriteString("<si><t>" + html.EscapeString(s) + "</t></si>")
		}
		sst = b.String()
	}

	return append([][2]string{
		{"[Content_Types].xml", types.String()},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="` + nsPkg + `">` +
			`<Relationship Id="rId1" Type="` + nsRel + `/officeDocument" Target="xl/workbook.xml"/></Relationships>`},
		{"xl/workbook.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<workbook xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">` + workbookPr +
			`<sheets>` + sheets.String() + `</sheets>` + definedNames + `</workbook>`},
		{"xl/_rels/workbook.xml.rels", rels.String()},
		{"xl/sharedStrings.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<sst xmlns="` + nsMain + `">` + sst + `</sst>`},
	}, parts...)
}
