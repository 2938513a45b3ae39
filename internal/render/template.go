package render

import (
	"errors"
	"fmt"
	"strings"

	"baliance.com/gooxml/color"
	"baliance.com/gooxml/drawing"
	"baliance.com/gooxml/measurement"
	"baliance.com/gooxml/presentation"
	"baliance.com/gooxml/schema/soo/dml"
	"baliance.com/gooxml/schema/soo/pml"

	"github.com/yungbote/deckforge-backend/internal/domain/outline"
)

type textStyle struct {
	size  int
	font  string
	color string
}

// box is a fallback text box position in inches.
type box struct{ x, y, w, h float64 }

var (
	titleBox    = box{0.5, 0.5, 9, 1.2}
	subtitleBox = box{0.5, 2.2, 9, 1.5}
	bodyBox     = box{0.5, 2, 9, 5}
)

func (r *DeckRenderer) renderTemplate(o *outline.SlideOutline, templatePath, outputPath string) (*Result, error) {
	deck, err := presentation.Open(templatePath)
	if err != nil {
		return nil, &Error{Op: "open template", Err: err}
	}
	style := sampleTemplateStyle(r.style, deck.Slides()).orDefault()
	r.log.Debug("Template style sampled",
		"title_font", style.TitleFont, "body_font", style.BodyFont,
		"title_color", style.TitleColor, "body_color", style.BodyColor)

	for _, s := range append([]presentation.Slide(nil), deck.Slides()...) {
		if err := deck.RemoveSlide(s); err != nil {
			return nil, &Error{Op: "clear template slides", Err: err}
		}
	}
	layouts := deck.SlideLayouts()
	if len(layouts) == 0 {
		return nil, &Error{Op: "open template", Err: errors.New("template has no slide layouts")}
	}

	res := &Result{SlideCount: len(o.Slides)}
	for i, s := range o.Slides {
		n := i + 1
		sld, err := deck.AddDefaultSlideWithLayout(pickLayout(layouts, s.Type))
		if err != nil {
			return nil, &Error{Op: fmt.Sprintf("add slide %d", n), Err: err}
		}
		fillSlide(sld, s, n, style, res)
	}

	if err := deck.SaveToFile(outputPath); err != nil {
		return nil, &Error{Op: "save", Err: err}
	}

	noteWarnings, err := injectSpeakerNotes(outputPath, templatePath, speakerNotes(o))
	if err != nil {
		res.warn(0, "speaker notes skipped: %v", err)
	}
	res.Warnings = append(res.Warnings, noteWarnings...)
	return res, nil
}

// pickLayout: title slides use the first layout, sections the first layout
// named like a section header, content slides the second layout.
func pickLayout(layouts []presentation.SlideLayout, t outline.SlideType) presentation.SlideLayout {
	switch t {
	case outline.SlideSection:
		for _, l := range layouts {
			if strings.Contains(strings.ToLower(l.Name()), "section") {
				return l
			}
		}
	case outline.SlideContent:
		if len(layouts) > 1 {
			return layouts[1]
		}
	}
	return layouts[0]
}

func fillSlide(sld presentation.Slide, s outline.Slide, n int, st Style, res *Result) {
	phs := sld.PlaceHolders()
	used := map[int]bool{}

	titleStyle := textStyle{size: st.TitleSize, font: st.TitleFont, color: st.TitleColor}
	if i := findPlaceholder(phs, used, pml.ST_PlaceholderTypeTitle, pml.ST_PlaceholderTypeCtrTitle); i >= 0 {
		writePlaceholder(phs[i], []string{s.Title}, titleStyle)
	} else {
		res.warn(n, "layout has no title placeholder; title placed in a text box")
		writeTextBox(sld, titleBox, []string{s.Title}, titleStyle)
	}

	switch s.Type {
	case outline.SlideTitle, outline.SlideSection:
		if strings.TrimSpace(s.Subtitle) == "" {
			return
		}
		subStyle := textStyle{size: st.SubtitleSize, font: st.SubtitleFont, color: st.BodyColor}
		i := findPlaceholder(phs, used, pml.ST_PlaceholderTypeSubTitle)
		if i < 0 {
			i = findBodyPlaceholder(phs, used)
		}
		if i >= 0 {
			writePlaceholder(phs[i], []string{s.Subtitle}, subStyle)
			return
		}
		res.warn(n, "layout has no subtitle placeholder; subtitle placed in a text box")
		writeTextBox(sld, subtitleBox, []string{s.Subtitle}, subStyle)
	default:
		bodyStyle := textStyle{size: st.BodySize, font: st.BodyFont, color: st.BodyColor}
		if i := findBodyPlaceholder(phs, used); i >= 0 {
			writePlaceholder(phs[i], s.Content, bodyStyle)
			return
		}
		res.warn(n, "layout has no content placeholder; bullets placed in a text box")
		writeTextBox(sld, bodyBox, s.Content, bodyStyle)
	}
}

func placeholderInfo(ph presentation.PlaceHolder) (pml.ST_PlaceholderType, uint32, bool) {
	x := ph.X()
	if x == nil || x.NvSpPr == nil || x.NvSpPr.NvPr == nil || x.NvSpPr.NvPr.Ph == nil {
		return pml.ST_PlaceholderTypeUnset, 0, false
	}
	var idx uint32
	if x.NvSpPr.NvPr.Ph.IdxAttr != nil {
		idx = *x.NvSpPr.NvPr.Ph.IdxAttr
	}
	return x.NvSpPr.NvPr.Ph.TypeAttr, idx, true
}

func findPlaceholder(phs []presentation.PlaceHolder, used map[int]bool, types ...pml.ST_PlaceholderType) int {
	for i, ph := range phs {
		if used[i] {
			continue
		}
		t, _, ok := placeholderInfo(ph)
		if !ok {
			continue
		}
		for _, want := range types {
			if t == want {
				used[i] = true
				return i
			}
		}
	}
	return -1
}

// findBodyPlaceholder matches body and object placeholders. A placeholder
// without a type attribute is an object placeholder.
func findBodyPlaceholder(phs []presentation.PlaceHolder, used map[int]bool) int {
	if i := findPlaceholder(phs, used, pml.ST_PlaceholderTypeBody, pml.ST_PlaceholderTypeObj); i >= 0 {
		return i
	}
	for i, ph := range phs {
		if used[i] {
			continue
		}
		if t, idx, ok := placeholderInfo(ph); ok && t == pml.ST_PlaceholderTypeUnset && idx > 0 {
			used[i] = true
			return i
		}
	}
	return -1
}

type paragraphAdder interface {
	AddParagraph() drawing.Paragraph
}

func writePlaceholder(ph presentation.PlaceHolder, lines []string, ts textStyle) {
	ph.ClearAll()
	writeParagraphs(ph, lines, ts)
}

func writeTextBox(sld presentation.Slide, b box, lines []string, ts textStyle) {
	tb := sld.AddTextBox()
	tb.Properties().SetGeometry(dml.ST_ShapeTypeRect)
	tb.Properties().SetPosition(
		measurement.Distance(b.x)*measurement.Inch,
		measurement.Distance(b.y)*measurement.Inch,
	)
	tb.Properties().SetSize(
		measurement.Distance(b.w)*measurement.Inch,
		measurement.Distance(b.h)*measurement.Inch,
	)
	writeParagraphs(tb, lines, ts)
}

func writeParagraphs(dst paragraphAdder, lines []string, ts textStyle) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	for _, line := range lines {
		run := dst.AddParagraph().AddRun()
		run.SetText(line)
		props := run.Properties()
		props.SetSize(measurement.Distance(ts.size) * measurement.Point)
		if ts.font != "" {
			props.SetFont(ts.font)
		}
		if ts.color != "" {
			props.SetSolidFill(color.RGB(rgb(ts.color)))
		}
	}
}

func speakerNotes(o *outline.SlideOutline) []string {
	out := make([]string, len(o.Slides))
	for i, s := range o.Slides {
		out[i] = s.SpeakerNotes
	}
	return out
}
