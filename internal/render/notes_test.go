package render

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/><Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/><Override PartName="/ppt/slides/slide2.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/></Types>`

	testPresentation = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst><p:sldIdLst><p:sldId id="256" r:id="rId3"/><p:sldId id="257" r:id="rId2"/></p:sldIdLst></p:presentation>`

	testPresentationRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/><Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/></Relationships>`

	testSlide = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree/></p:cSld></p:sld>`

	testNotesMaster = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notesMaster xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree/></p:cSld></p:notesMaster>`

	testNotesMasterRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/></Relationships>`

	testTheme = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office"/>`
)

func writeZip(t *testing.T, file string, parts map[string]string) {
	t.Helper()
	f, err := os.Create(file)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func deckParts() map[string]string {
	return map[string]string{
		"[Content_Types].xml":               testContentTypes,
		"ppt/presentation.xml":              testPresentation,
		"ppt/_rels/presentation.xml.rels":   testPresentationRels,
		"ppt/slides/slide1.xml":             testSlide,
		"ppt/slides/slide2.xml":             testSlide,
		"ppt/slideMasters/slideMaster1.xml": testSlide,
	}
}

func templateParts() map[string]string {
	parts := deckParts()
	parts["ppt/presentation.xml"] = strings.Replace(testPresentation, "</p:sldMasterIdLst>",
		`</p:sldMasterIdLst><p:notesMasterIdLst><p:notesMasterId r:id="rId9"/></p:notesMasterIdLst>`, 1)
	parts["ppt/_rels/presentation.xml.rels"] = strings.Replace(testPresentationRels, "</Relationships>",
		`<Relationship Id="rId9" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster" Target="notesMasters/notesMaster1.xml"/></Relationships>`, 1)
	parts["ppt/notesMasters/notesMaster1.xml"] = testNotesMaster
	parts["ppt/notesMasters/_rels/notesMaster1.xml.rels"] = testNotesMasterRels
	parts["ppt/theme/theme1.xml"] = testTheme
	return parts
}

func TestInjectSpeakerNotesAdoptsTemplateMaster(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	tpl := filepath.Join(dir, "template.pptx")
	writeZip(t, deck, deckParts())
	writeZip(t, tpl, templateParts())

	warnings, err := injectSpeakerNotes(deck, tpl, []string{"first <note> & more", ""})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	pkg, err := readPackage(deck)
	require.NoError(t, err)

	master, err := pkg.notesMaster()
	require.NoError(t, err)
	assert.Equal(t, "ppt/notesMasters/notesMaster1.xml", master)
	assert.True(t, pkg.has("ppt/theme/theme1.xml"))

	// Presentation order puts slide1.xml first via rId3.
	slideRels, err := pkg.rels("ppt/slides/slide1.xml")
	require.NoError(t, err)
	rel := slideRels.byType(relTypeNotesSlide)
	require.NotNil(t, rel)
	notesPart := resolve("ppt/slides/slide1.xml", rel.Target)
	assert.Equal(t, "ppt/notesSlides/notesSlide1.xml", notesPart)
	assert.Contains(t, string(pkg.parts[notesPart]), "first &lt;note&gt; &amp; more")

	second, err := pkg.rels("ppt/slides/slide2.xml")
	require.NoError(t, err)
	assert.Nil(t, second.byType(relTypeNotesSlide))

	ct, err := pkg.contentTypes()
	require.NoError(t, err)
	assert.Equal(t, ctNotesSlide, ct.lookup(notesPart))
	assert.Equal(t, ctNotesMaster, ct.lookup(master))
}

func TestInjectSpeakerNotesWarnsWithoutMaster(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	tpl := filepath.Join(dir, "template.pptx")
	writeZip(t, deck, deckParts())
	writeZip(t, tpl, deckParts())

	warnings, err := injectSpeakerNotes(deck, tpl, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "no notes master")

	pkg, err := readPackage(deck)
	require.NoError(t, err)
	assert.False(t, pkg.has("ppt/notesSlides/notesSlide1.xml"))
}

func TestInjectSpeakerNotesSkipsBlankNotes(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "missing.pptx")

	warnings, err := injectSpeakerNotes(deck, "", []string{" ", ""})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestRelativeTargetRoundTrip(t *testing.T) {
	target := relativeTarget("ppt/slides/slide1.xml", "ppt/notesSlides/notesSlide1.xml")
	assert.Equal(t, "../notesSlides/notesSlide1.xml", target)
	assert.Equal(t, "ppt/notesSlides/notesSlide1.xml", resolve("ppt/slides/slide1.xml", target))
	assert.Equal(t, "ppt/media/a.png", resolve("ppt/slides/slide1.xml", "/ppt/media/a.png"))
}
