// Package ooxml reads and writes the parts of a spreadsheet package (.xlsx)
// needed for tabular access: the workbook sheet list, the shared string table
// and worksheet sheetData.
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx package.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrSheetNotFound indicates the workbook has no sheet with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrReadOnly indicates a write on a package opened without write access.
var ErrReadOnly = errors.New("package is read-only")

// ErrClosed indicates use of a closed package.
var ErrClosed = errors.New("package is closed")

// Option configures Open.
type Option func(*Package)

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Package) { p.log = l }
}

// Package is an open spreadsheet package. It is not safe for concurrent use.
type Package struct {
	path     string
	writable bool
	zr       *zip.ReadCloser
	log      zerolog.Logger

	workbookPath     string
	workbookRelsPath string
	sheets           []SheetRef
	allSheets        []SheetRef // every sheet entry, including non-worksheets
	definedNames     []DefinedName
	sharedStrings    SharedStrings
	date1904         bool

	loaded   map[string]*Worksheet // by part path
	modified map[string][]byte     // part path -> new content
	deleted  map[string]bool
}

// Open opens the package at path. Writes are rejected unless writable is set.
func Open(filePath string, writable bool, opts ...Option) (*Package, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return nil, err
	}

	p := &Package{
		path:     filePath,
		writable: writable,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.open(); err != nil {
		return nil, err
	}
	p.log.Debug().Str("path", filePath).Bool("writable", writable).Int("sheets", len(p.sheets)).Msg("package opened")
	return p, nil
}

func (p *Package) open() error {
	zr, err := zip.OpenReader(p.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := p.index(&zr.Reader); err != nil {
		zr.Close()
		return err
	}
	p.zr = zr
	p.loaded = make(map[string]*Worksheet)
	p.modified = make(map[string][]byte)
	p.deleted = make(map[string]bool)
	return nil
}

// index reads the workbook, its relationships and the shared string table.
func (p *Package) index(r *zip.Reader) error {
	p.workbookPath = defaultWorkbook
	if rootRels, err := readZipFile(r, rootRelsPart); err == nil && rootRels != nil {
		for _, rel := range parseRelationships(rootRels) {
			if relTypeIs(rel.Type, relTypeOfficeDocument) {
				p.workbookPath = resolveRelativePath(rel.Target, "")
				break
			}
		}
	}

	workbookXML, err := readZipFile(r, p.workbookPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if workbookXML == nil {
		return fmt.Errorf("%w: missing %s", ErrInvalidFormat, p.workbookPath)
	}
	info := parseWorkbook(workbookXML)

	p.workbookRelsPath = relsPathFor(p.workbookPath)
	wbRelsXML, err := readZipFile(r, p.workbookRelsPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	baseDir := path.Dir(p.workbookPath)
	targets := make(map[string]string)
	sstPath := path.Join(baseDir, "sharedStrings.xml")
	for _, rel := range parseRelationships(wbRelsXML) {
		switch {
		case relTypeIs(rel.Type, relTypeWorksheet):
			targets[rel.ID] = resolveRelativePath(rel.Target, baseDir)
		case relTypeIs(rel.Type, relTypeSharedStrings):
			sstPath = resolveRelativePath(rel.Target, baseDir)
		}
	}

	p.sheets = p.sheets[:0]
	for _, ref := range info.sheets {
		target, ok := targets[ref.RelID]
		if !ok {
			// chartsheets and dialog sheets have no sheetData
			continue
		}
		ref.Path = target
		p.sheets = append(p.sheets, ref)
	}
	p.date1904 = info.date1904
	p.definedNames = info.definedNames
	p.allSheets = info.sheets

	sstXML, err := readZipFile(r, sstPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if p.sharedStrings, err = parseSharedStrings(sstXML); err != nil {
		return fmt.Errorf("%w: shared strings: %v", ErrInvalidFormat, err)
	}
	return nil
}

// Path returns the file the package was opened from.
func (p *Package) Path() string {
	return p.path
}

// Writable reports whether the package accepts writes.
func (p *Package) Writable() bool {
	return p.writable
}

// Sheets returns the worksheet entries in workbook order.
func (p *Package) Sheets() []SheetRef {
	out := make([]SheetRef, len(p.sheets))
	copy(out, p.sheets)
	return out
}

// SharedStrings returns the shared string table.
func (p *Package) SharedStrings() SharedStrings {
	return p.sharedStrings
}

// Date1904 reports whether serial dates count from 1904-01-01.
func (p *Package) Date1904() bool {
	return p.date1904
}

// DefinedNames returns the defined names of the workbook.
func (p *Package) DefinedNames() []DefinedName {
	out := make([]DefinedName, len(p.definedNames))
	copy(out, p.definedNames)
	return out
}

// ScopeSheet returns the name of the sheet a sheet-scoped defined name
// belongs to. ok is false for workbook-scoped names.
func (p *Package) ScopeSheet(dn DefinedName) (name string, ok bool) {
	if dn.LocalSheetID == nil {
		return "", false
	}
	i := *dn.LocalSheetID
	if i < 0 || i >= len(p.allSheets) {
		return "", false
	}
	return p.allSheets[i].Name, true
}

// Sheet returns the entry for name.
func (p *Package) Sheet(name string) (SheetRef, bool) {
	for _, ref := range p.sheets {
		if ref.Name == name {
			return ref, true
		}
	}
	return SheetRef{}, false
}

// Worksheet loads the named worksheet. Repeated calls return the same
// instance, so edits made through it are visible to later reads.
func (p *Package) Worksheet(name string) (*Worksheet, error) {
	if p.zr == nil {
		return nil, ErrClosed
	}
	ref, ok := p.Sheet(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	if ws, ok := p.loaded[ref.Path]; ok {
		return ws, nil
	}

	data, err := p.readPart(ref.Path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: missing part %s", ErrInvalidFormat, ref.Path)
	}
	ws, err := parseWorksheet(ref, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, ref.Path, err)
	}
	p.loaded[ref.Path] = ws
	p.log.Debug().Str("sheet", name).Str("part", ref.Path).Int("rows", len(ws.Rows)).Msg("worksheet loaded")
	return ws, nil
}

func (p *Package) readPart(name string) ([]byte, error) {
	if p.deleted[name] {
		return nil, nil
	}
	if data, ok := p.modified[name]; ok {
		return data, nil
	}
	return readZipFile(&p.zr.Reader, name)
}

// CommitSheet serializes the rows of a loaded worksheet into the package.
// Nothing reaches the disk until Save.
func (p *Package) CommitSheet(name string) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	ref, ok := p.Sheet(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	ws, ok := p.loaded[ref.Path]
	if !ok || !ws.dirty {
		return nil
	}
	data, err := ws.Marshal()
	if err != nil {
		return fmt.Errorf("marshal sheet %q: %w", name, err)
	}
	p.modified[ref.Path] = data
	ws.dirty = false
	p.log.Debug().Str("sheet", name).Int("bytes", len(data)).Msg("worksheet committed")
	return nil
}

// DeleteSheet removes a worksheet: its workbook entry, relationship, content
// type override and part.
func (p *Package) DeleteSheet(name string) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	ref, ok := p.Sheet(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	edits := []struct {
		part  string
		local string
		match func(xml.StartElement) bool
	}{
		{p.workbookPath, "sheet", func(se xml.StartElement) bool { return attrValue(se, "id") == ref.RelID }},
		{p.workbookRelsPath, "Relationship", func(se xml.StartElement) bool { return attrValue(se, "Id") == ref.RelID }},
		{contentTypesPart, "Override", func(se xml.StartElement) bool { return attrValue(se, "PartName") == "/"+ref.Path }},
	}
	for _, e := range edits {
		data, err := p.readPart(e.part)
		if err != nil {
			return err
		}
		if data == nil {
			continue
		}
		out, removed, err := removeElement(data, e.local, e.match)
		if err != nil {
			return fmt.Errorf("edit %s: %w", e.part, err)
		}
		if removed {
			p.modified[e.part] = out
		}
	}

	pos := p.position(ref)
	if pos >= 0 {
		if err := p.dropSheetScope(pos); err != nil {
			return err
		}
	}

	p.deleted[ref.Path] = true
	p.deleted[relsPathFor(ref.Path)] = true
	delete(p.modified, ref.Path)
	delete(p.loaded, ref.Path)

	sheets := p.sheets[:0]
	for _, s := range p.sheets {
		if s.Name != name {
			sheets = append(sheets, s)
		}
	}
	p.sheets = sheets
	if len(p.sheets) == 0 {
		p.log.Warn().Str("sheet", name).Msg("deleted the last worksheet; spreadsheet applications will refuse the file")
	}
	p.log.Debug().Str("sheet", name).Str("part", ref.Path).Msg("worksheet deleted")
	return nil
}

// position returns the index of ref among all sheet entries, the index
// localSheetId refers to, or -1.
func (p *Package) position(ref SheetRef) int {
	for i, s := range p.allSheets {
		if s.RelID == ref.RelID {
			return i
		}
	}
	return -1
}

// dropSheetScope removes the names scoped to the sheet entry at pos and
// renumbers the localSheetId and activeTab values after it, both in
// workbook.xml and in memory.
func (p *Package) dropSheetScope(pos int) error {
	data, err := p.readPart(p.workbookPath)
	if err != nil {
		return err
	}
	if data != nil {
		scoped := func(se xml.StartElement) bool { return attrValue(se, "localSheetId") == strconv.Itoa(pos) }
		for {
			out, removed, err := removeElement(data, "definedName", scoped)
			if err != nil {
				return fmt.Errorf("edit %s: %w", p.workbookPath, err)
			}
			if !removed {
				break
			}
			data = out
		}

		last := len(p.allSheets) - 2
		shift := func(n int) int {
			if n > pos || (n == pos && n > last) {
				return max(n-1, 0)
			}
			return n
		}
		if data, err = shiftIndexAttr(data, "definedName", "localSheetId", shift); err != nil {
			return fmt.Errorf("edit %s: %w", p.workbookPath, err)
		}
		if data, err = shiftIndexAttr(data, "workbookView", "activeTab", shift); err != nil {
			return fmt.Errorf("edit %s: %w", p.workbookPath, err)
		}
		p.modified[p.workbookPath] = data
	}

	names := p.definedNames[:0]
	for _, dn := range p.definedNames {
		if dn.LocalSheetID != nil {
			id := *dn.LocalSheetID
			if id == pos {
				continue
			}
			if id > pos {
				id--
			}
			dn.LocalSheetID = &id
		}
		names = append(names, dn)
	}
	p.definedNames = names
	p.allSheets = append(p.allSheets[:pos:pos], p.allSheets[pos+1:]...)
	return nil
}

// Save commits every dirty worksheet and rewrites the package file in place.
func (p *Package) Save() error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	if err := p.commitAll(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".xltable-*.xlsx")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := p.writeTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	p.zr.Close()
	p.zr = nil
	if err := os.Rename(tmpName, p.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	loaded := p.loaded
	if err := p.open(); err != nil {
		return err
	}
	// the in-memory worksheets match what was just written
	for part, ws := range loaded {
		p.loaded[part] = ws
	}
	p.log.Debug().Str("path", p.path).Msg("package saved")
	return nil
}

// SaveAs writes the package, including uncommitted worksheet edits, to a new
// file. The open package keeps reading from its original file.
func (p *Package) SaveAs(target string) error {
	if p.zr == nil {
		return ErrClosed
	}
	for _, ws := range p.loaded {
		if !ws.dirty {
			continue
		}
		data, err := ws.Marshal()
		if err != nil {
			return fmt.Errorf("marshal sheet %q: %w", ws.Name, err)
		}
		p.modified[ws.Path] = data
		ws.dirty = false
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if err := p.writeTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	p.log.Debug().Str("path", target).Msg("package saved as")
	return nil
}

func (p *Package) commitAll() error {
	for _, ref := range p.sheets {
		if err := p.CommitSheet(ref.Name); err != nil {
			return err
		}
	}
	return nil
}

func (p *Package) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, f := range p.zr.File {
		if p.deleted[f.Name] {
			continue
		}
		data, ok := p.modified[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

func (p *Package) checkWritable() error {
	if p.zr == nil {
		return ErrClosed
	}
	if !p.writable {
		return ErrReadOnly
	}
	return nil
}

// Close releases the underlying file. Closing twice is a no-op.
func (p *Package) Close() error {
	if p.zr == nil {
		return nil
	}
	err := p.zr.Close()
	p.zr = nil
	p.loaded = nil
	p.log.Debug().Str("path", p.path).Msg("package closed")
	return err
}
