package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var errNoNotesMaster = errors.New("template has no notes master")

// injectSpeakerNotes adds one notes slide per non-blank entry of notes,
// matched to slides by presentation order. When the saved deck lost its notes
// master, the master is adopted from templatePath.
func injectSpeakerNotes(deckPath, templatePath string, notes []string) ([]Warning, error) {
	if !anyNonBlank(notes) {
		return nil, nil
	}
	pkg, err := readPackage(deckPath)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}

	master, err := pkg.notesMaster()
	if err != nil {
		return nil, err
	}
	if master == "" && templatePath != "" {
		tpl, err := readPackage(templatePath)
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
		master, err = pkg.adoptNotesMaster(tpl)
		if err != nil && !errors.Is(err, errNoNotesMaster) {
			return nil, err
		}
	}
	if master == "" {
		return []Warning{{Message: "speaker notes skipped: " + errNoNotesMaster.Error()}}, nil
	}

	slides, err := pkg.slideParts()
	if err != nil {
		return nil, err
	}
	ct, err := pkg.contentTypes()
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	if len(slides) != len(notes) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("deck has %d slides but %d note entries", len(slides), len(notes))})
	}
	for i, slidePart := range slides {
		if i >= len(notes) || strings.TrimSpace(notes[i]) == "" {
			continue
		}
		if err := pkg.writeNotesSlide(ct, slidePart, master, notes[i]); err != nil {
			warnings = append(warnings, Warning{Slide: i + 1, Message: "speaker notes skipped: " + err.Error()})
		}
	}

	if err := pkg.setContentTypes(ct); err != nil {
		return nil, err
	}
	if err := pkg.writeFile(deckPath); err != nil {
		return nil, fmt.Errorf("write deck: %w", err)
	}
	return warnings, nil
}

// notesMaster returns the notes master part name, or "" when the package
// has none reachable from presentation.xml.
func (p *opcPackage) notesMaster() (string, error) {
	rels, err := p.rels(partPresentation)
	if err != nil {
		return "", err
	}
	rel := rels.byType(relTypeNotesMaster)
	if rel == nil {
		return "", nil
	}
	part := resolve(partPresentation, rel.Target)
	if !p.has(part) {
		return "", nil
	}
	idx, err := p.presentationIndex()
	if err != nil {
		return "", err
	}
	for _, id := range idx.NotesMasterIDs {
		if id.RID == rel.ID {
			return part, nil
		}
	}
	return "", nil
}

var (
	notesMasterIDRe  = regexp.MustCompile(`(<p:notesMasterId\b[^>]*\br:id=")[^"]*(")`)
	sldMasterListEnd = []byte("</p:sldMasterIdLst>")
)

// adoptNotesMaster copies the notes master of tpl (and its theme) into p and
// links it from presentation.xml.
func (p *opcPackage) adoptNotesMaster(tpl *opcPackage) (string, error) {
	src, err := tpl.notesMaster()
	if err != nil {
		return "", err
	}
	if src == "" {
		return "", errNoNotesMaster
	}
	tplCT, err := tpl.contentTypes()
	if err != nil {
		return "", err
	}
	ct, err := p.contentTypes()
	if err != nil {
		return "", err
	}

	dst := p.freeName("ppt/notesMasters", "notesMaster")
	srcRels, err := tpl.rels(src)
	if err != nil {
		return "", err
	}
	dstRels := &relationships{}
	for _, rel := range srcRels.Items {
		if rel.TargetMode == "External" {
			dstRels.Items = append(dstRels.Items, rel)
			continue
		}
		srcPart := resolve(src, rel.Target)
		data, ok := tpl.parts[srcPart]
		if !ok {
			continue
		}
		dstPart := srcPart
		if rel.Type == relTypeTheme {
			dstPart = p.freeName("ppt/theme", "theme")
		} else if p.has(dstPart) {
			continue
		}
		p.set(dstPart, data)
		switch typ := tplCT.lookup(srcPart); {
		case rel.Type == relTypeTheme:
			ct.override(dstPart, ctTheme)
		case path.Ext(srcPart) == ".xml" && typ != "":
			ct.override(dstPart, typ)
		}
		rel.Target = relativeTarget(dst, dstPart)
		dstRels.Items = append(dstRels.Items, rel)
	}

	p.set(dst, tpl.parts[src])
	if err := p.setRels(dst, dstRels); err != nil {
		return "", err
	}
	ct.override(dst, ctNotesMaster)

	presRels, err := p.rels(partPresentation)
	if err != nil {
		return "", err
	}
	if stale := presRels.byType(relTypeNotesMaster); stale != nil {
		stale.Target = relativeTarget(partPresentation, dst)
		err = p.linkNotesMaster(stale.ID)
	} else {
		err = p.linkNotesMaster(presRels.add(relTypeNotesMaster, relativeTarget(partPresentation, dst)))
	}
	if err != nil {
		return "", err
	}
	if err := p.setRels(partPresentation, presRels); err != nil {
		return "", err
	}
	if err := p.setContentTypes(ct); err != nil {
		return "", err
	}
	return dst, nil
}

// linkNotesMaster points presentation.xml's notesMasterIdLst at rID, adding
// the list after sldMasterIdLst when missing.
func (p *opcPackage) linkNotesMaster(rID string) error {
	data := p.parts[partPresentation]
	if notesMasterIDRe.Match(data) {
		p.set(partPresentation, notesMasterIDRe.ReplaceAll(data, []byte("${1}"+rID+"${2}")))
		return nil
	}
	at := bytes.Index(data, sldMasterListEnd)
	if at < 0 {
		return errors.New("presentation.xml has no slide master list")
	}
	at += len(sldMasterListEnd)
	elem := []byte(`<p:notesMasterIdLst><p:notesMasterId r:id="` + rID + `"/></p:notesMasterIdLst>`)
	out := make([]byte, 0, len(data)+len(elem))
	out = append(out, data[:at]...)
	out = append(out, elem...)
	out = append(out, data[at:]...)
	p.set(partPresentation, out)
	return nil
}

func (p *opcPackage) writeNotesSlide(ct *contentTypes, slidePart, masterPart, text string) error {
	slideRels, err := p.rels(slidePart)
	if err != nil {
		return err
	}

	var notesPart string
	if rel := slideRels.byType(relTypeNotesSlide); rel != nil {
		notesPart = resolve(slidePart, rel.Target)
	} else {
		notesPart = p.freeName("ppt/notesSlides", "notesSlide")
		slideRels.add(relTypeNotesSlide, relativeTarget(slidePart, notesPart))
		if err := p.setRels(slidePart, slideRels); err != nil {
			return err
		}
	}

	body, err := notesSlideXML(text)
	if err != nil {
		return err
	}
	p.set(notesPart, body)

	notesRels := &relationships{}
	notesRels.add(relTypeNotesMaster, relativeTarget(notesPart, masterPart))
	notesRels.add(relTypeSlide, relativeTarget(notesPart, slidePart))
	if err := p.setRels(notesPart, notesRels); err != nil {
		return err
	}
	ct.override(notesPart, ctNotesSlide)
	return nil
}

const notesSlideHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr><p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp><p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`

const notesSlideTail = `</p:txBody></p:sp></p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`

func notesSlideXML(text string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(notesSlideHead)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		buf.WriteString(`<a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>`)
		if err := xml.EscapeText(&buf, []byte(line)); err != nil {
			return nil, err
		}
		buf.WriteString(`</a:t></a:r></a:p>`)
	}
	buf.WriteString(notesSlideTail)
	return buf.Bytes(), nil
}

func anyNonBlank(ss []string) bool {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
