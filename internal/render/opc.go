package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// opcPackage is an in-memory view of an OOXML zip package. Part names have
// no leading slash.
type opcPackage struct {
	names []string
	parts map[string][]byte
}

func readPackage(file string) (*opcPackage, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	p := &opcPackage{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		p.set(f.Name, data)
	}
	return p, nil
}

func (p *opcPackage) has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

func (p *opcPackage) set(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

// writeFile replaces file atomically via a sibling temp file.
func (p *opcPackage) writeFile(file string) error {
	tmp, err := os.CreateTemp(filepath.Dir(file), ".deck-*.pptx")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	zw := zip.NewWriter(tmp)
	for _, name := range p.names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			tmp.Close()
			cleanup()
			return err
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			tmp.Close()
			cleanup()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, file); err != nil {
		cleanup()
		return err
	}
	return nil
}

// freeName returns the first "<dir>/<stem><n>.xml" not yet in the package.
func (p *opcPackage) freeName(dir, stem string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s/%s%d.xml", dir, stem, n)
		if !p.has(name) {
			return name
		}
	}
}

const (
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"

	relTypeBase        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	relTypeSlide       = relTypeBase + "slide"
	relTypeNotesSlide  = relTypeBase + "notesSlide"
	relTypeNotesMaster = relTypeBase + "notesMaster"
	relTypeTheme       = relTypeBase + "theme"

	ctNotesSlide  = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctNotesMaster = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ctTheme       = "application/vnd.openxmlformats-officedocument.theme+xml"

	partPresentation = "ppt/presentation.xml"
	partContentTypes = "[Content_Types].xml"
)

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Items   []relationship `xml:"Relationship"`
}

func relsPartFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func (p *opcPackage) rels(part string) (*relationships, error) {
	data, ok := p.parts[relsPartFor(part)]
	if !ok {
		return &relationships{}, nil
	}
	var r relationships
	if err := xml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode rels for %s: %w", part, err)
	}
	return &r, nil
}

func (p *opcPackage) setRels(part string, r *relationships) error {
	r.XMLName = xml.Name{Space: nsRelationships, Local: "Relationships"}
	data, err := xml.Marshal(r)
	if err != nil {
		return err
	}
	p.set(relsPartFor(part), append([]byte(xml.Header), data...))
	return nil
}

func (r *relationships) byType(typ string) *relationship {
	for i := range r.Items {
		if r.Items[i].Type == typ {
			return &r.Items[i]
		}
	}
	return nil
}

func (r *relationships) byID(id string) *relationship {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}

func (r *relationships) add(typ, target string) string {
	highest := 0
	for _, it := range r.Items {
		if n, err := strconv.Atoi(strings.TrimPrefix(it.ID, "rId")); err == nil && n > highest {
			highest = n
		}
	}
	id := "rId" + strconv.Itoa(highest+1)
	r.Items = append(r.Items, relationship{ID: id, Type: typ, Target: target})
	return id
}

// resolve turns a relationship target into a part name.
func resolve(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(sourcePart), target))
}

// relativeTarget is the inverse of resolve for parts in the same package.
func relativeTarget(sourcePart, part string) string {
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(sourcePart)), filepath.FromSlash(part))
	if err != nil {
		return "/" + part
	}
	return filepath.ToSlash(rel)
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypes struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

func (p *opcPackage) contentTypes() (*contentTypes, error) {
	data, ok := p.parts[partContentTypes]
	if !ok {
		return nil, fmt.Errorf("package has no %s", partContentTypes)
	}
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("decode content types: %w", err)
	}
	return &ct, nil
}

func (p *opcPackage) setContentTypes(ct *contentTypes) error {
	ct.XMLName = xml.Name{Space: nsContentTypes, Local: "Types"}
	data, err := xml.Marshal(ct)
	if err != nil {
		return err
	}
	p.set(partContentTypes, append([]byte(xml.Header), data...))
	return nil
}

func (ct *contentTypes) override(part, contentType string) {
	name := "/" + part
	for i := range ct.Overrides {
		if ct.Overrides[i].PartName == name {
			ct.Overrides[i].ContentType = contentType
			return
		}
	}
	ct.Overrides = append(ct.Overrides, ctOverride{PartName: name, ContentType: contentType})
}

func (ct *contentTypes) lookup(part string) string {
	name := "/" + part
	for _, o := range ct.Overrides {
		if o.PartName == name {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(part), ".")
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType
		}
	}
	return ""
}

type presentationIndex struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
	NotesMasterIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"notesMasterIdLst>notesMasterId"`
}

func (p *opcPackage) presentationIndex() (*presentationIndex, error) {
	data, ok := p.parts[partPresentation]
	if !ok {
		return nil, fmt.Errorf("package has no %s", partPresentation)
	}
	var idx presentationIndex
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode presentation: %w", err)
	}
	return &idx, nil
}

// slideParts returns slide part names in presentation order.
func (p *opcPackage) slideParts() ([]string, error) {
	idx, err := p.presentationIndex()
	if err != nil {
		return nil, err
	}
	rels, err := p.rels(partPresentation)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(idx.SlideIDs))
	for _, s := range idx.SlideIDs {
		rel := rels.byID(s.RID)
		if rel == nil || rel.Type != relTypeSlide {
			return nil, fmt.Errorf("slide relationship %q not found", s.RID)
		}
		out = append(out, resolve(partPresentation, rel.Target))
	}
	return out, nil
}
