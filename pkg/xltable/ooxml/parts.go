package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
)

const (
	relTypeOfficeDocument = "officeDocument"
	relTypeWorksheet      = "worksheet"
	relTypeSharedStrings  = "sharedStrings"

	contentTypesPart = "[Content_Types].xml"
	rootRelsPart     = "_rels/.rels"
	defaultWorkbook  = "xl/workbook.xml"
)

type relationship struct {
	ID     string
	Type   string
	Target string
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

// resolveRelativePath resolves a relationship target against the directory of
// the part owning the relationship.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(baseDir, target)
}

// relsPathFor returns the relationships part of a part, e.g.
// xl/workbook.xml -> xl/_rels/workbook.xml.rels.
func relsPathFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

func parseRelationships(data []byte) []relationship {
	var rels []relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var rel relationship
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Id":
					rel.ID = attr.Value
				case "Type":
					rel.Type = attr.Value
				case "Target":
					rel.Target = attr.Value
				}
			}
			rels = append(rels, rel)
		}
	}

	return rels
}

// relTypeIs matches the last path segment of a relationship type URI.
func relTypeIs(relType, kind string) bool {
	return strings.HasSuffix(relType, "/"+kind)
}

// workbookInfo is what the package needs from workbook.xml.
type workbookInfo struct {
	sheets       []SheetRef
	date1904     bool
	definedNames []DefinedName
}

type xlsxDefinedName struct {
	Name         string `xml:"name,attr"`
	LocalSheetID *int   `xml:"localSheetId,attr"`
	RefersTo     string `xml:",chardata"`
}

// parseWorkbook reads the sheet entries of workbook.xml in document order,
// the date system and the defined names.
func parseWorkbook(data []byte) workbookInfo {
	var info workbookInfo
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "workbookPr":
			if v := attrValue(se, "date1904"); v != "" {
				info.date1904 = v == "1" || strings.EqualFold(v, "true")
			}
		case "sheet":
			var ref SheetRef
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "name":
					ref.Name = attr.Value
				case "sheetId":
					ref.ID = attr.Value
				case "id":
					ref.RelID = attr.Value
				}
			}
			if ref.Name != "" && ref.RelID != "" {
				info.sheets = append(info.sheets, ref)
			}
		case "definedName":
			var dn xlsxDefinedName
			if err := decoder.DecodeElement(&dn, &se); err != nil {
				continue
			}
			info.definedNames = append(info.definedNames, DefinedName{
				Name:         dn.Name,
				LocalSheetID: dn.LocalSheetID,
				RefersTo:     strings.TrimSpace(dn.RefersTo),
			})
		}
	}

	return info
}

func parseSharedStrings(data []byte) (SharedStrings, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var sst xlsxSST
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, err
	}
	out := make(SharedStrings, len(sst.SI))
	for i := range sst.SI {
		out[i] = sst.SI[i].String()
	}
	return out, nil
}

// removeElement cuts the first element named local for which match returns
// true out of data. The surrounding bytes are kept verbatim.
func removeElement(data []byte, local string, match func(xml.StartElement) bool) ([]byte, bool, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		start := decoder.InputOffset()
		token, err := decoder.Token()
		if err == io.EOF {
			return data, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != local || !match(se) {
			continue
		}
		if err := decoder.Skip(); err != nil {
			return nil, false, err
		}
		end := decoder.InputOffset()
		out := make([]byte, 0, len(data)-int(end-start))
		out = append(out, data[:start]...)
		out = append(out, data[end:]...)
		return out, true, nil
	}
}

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// shiftIndexAttr rewrites the integer attribute attr on every element named
// local through fn. Only the matched start tags change; all other bytes are
// kept verbatim.
func shiftIndexAttr(data []byte, local, attr string, fn func(int) int) ([]byte, error) {
	re := regexp.MustCompile(`(\b` + regexp.QuoteMeta(attr) + `\s*=\s*["'])(\d+)(["'])`)
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var out bytes.Buffer
	var last int64
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
		if !ok || se.Name.Local != local || attrValue(se, attr) == "" {
			continue
		}
		end := decoder.InputOffset()
		out.Write(data[last:start])
		out.Write(re.ReplaceAllFunc(data[start:end], func(m []byte) []byte {
			sub := re.FindSubmatch(m)
			n, err := strconv.Atoi(string(sub[2]))
			if err != nil {
				return m
			}
			return []byte(string(sub[1]) + strconv.Itoa(fn(n)) + string(sub[3]))
		}))
		last = end
	}
	out.Write(data[last:])
	return out.Bytes(), nil
}
