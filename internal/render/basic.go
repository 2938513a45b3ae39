package render

import (
	"fmt"
	"os"

	ppt "github.com/VantageDataChat/GoPPT"

	"github.com/yungbote/deckforge-backend/internal/domain/outline"
)

// Layout for decks built without a template, 16:9 in EMU.
const (
	emuPerInch = 914400

	basicMarginX     = int64(0.5 * emuPerInch)
	basicContentW    = int64(9.0 * emuPerInch)
	basicSlideWidth  = int64(10.0 * emuPerInch)
	basicSlideHeight = int64(5.625 * emuPerInch)
	basicAccentBarH  = int64(0.12 * emuPerInch)
)

func argb(hex string) ppt.Color {
	return ppt.NewColor("FF" + hex)
}

func (r *DeckRenderer) renderBasic(o *outline.SlideOutline, outputPath string) (*Result, error) {
	style := r.style.orDefault()

	p := ppt.New()
	p.GetDocumentProperties().Title = o.Title
	p.GetDocumentProperties().Creator = "deckforge"
	p.GetLayout().SetCustomLayout(basicSlideWidth, basicSlideHeight)

	res := &Result{SlideCount: len(o.Slides)}
	for i, s := range o.Slides {
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}
		switch s.Type {
		case outline.SlideTitle, outline.SlideSection:
			addBasicCover(slide, s, style)
		default:
			addBasicContent(slide, s, style)
		}
		slide.SetNotes(s.SpeakerNotes)
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, &Error{Op: "create writer", Err: err}
	}
	pw, ok := w.(*ppt.PPTXWriter)
	if !ok {
		return nil, &Error{Op: "create writer", Err: fmt.Errorf("unexpected writer %T", w)}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, &Error{Op: "save", Err: err}
	}
	if err := pw.WriteTo(f); err != nil {
		f.Close()
		return nil, &Error{Op: "save", Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &Error{Op: "save", Err: err}
	}
	return res, nil
}

func addBasicCover(slide *ppt.Slide, s outline.Slide, st Style) {
	bar := slide.CreateRichTextShape()
	bar.SetOffsetX(0).SetOffsetY(0)
	bar.SetWidth(basicSlideWidth).SetHeight(basicAccentBarH)
	bar.SetFill(ppt.NewFill().SetSolid(argb(st.AccentColor)))

	title := slide.CreateRichTextShape()
	title.SetOffsetX(basicMarginX).SetOffsetY(int64(1.7 * emuPerInch))
	title.SetWidth(basicContentW).SetHeight(int64(1.1 * emuPerInch))
	title.CreateTextRun(s.Title).GetFont().SetName(st.TitleFont).SetSize(st.TitleSize).SetBold(true).SetColor(argb(st.TitleColor))
	title.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))

	if s.Subtitle == "" {
		return
	}
	sub := slide.CreateRichTextShape()
	sub.SetOffsetX(basicMarginX).SetOffsetY(int64(3.0 * emuPerInch))
	sub.SetWidth(basicContentW).SetHeight(int64(0.8 * emuPerInch))
	sub.CreateTextRun(s.Subtitle).GetFont().SetName(st.SubtitleFont).SetSize(st.SubtitleSize).SetColor(argb(st.BodyColor))
	sub.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

func addBasicContent(slide *ppt.Slide, s outline.Slide, st Style) {
	title := slide.CreateRichTextShape()
	title.SetOffsetX(basicMarginX).SetOffsetY(int64(0.35 * emuPerInch))
	title.SetWidth(basicContentW).SetHeight(int64(0.9 * emuPerInch))
	title.CreateTextRun(s.Title).GetFont().SetName(st.TitleFont).SetSize(st.TitleSize).SetBold(true).SetColor(argb(st.TitleColor))

	body := slide.CreateRichTextShape()
	body.SetOffsetX(basicMarginX).SetOffsetY(int64(1.4 * emuPerInch))
	body.SetWidth(basicContentW).SetHeight(basicSlideHeight - int64(1.8*emuPerInch))
	for i, line := range s.Content {
		if i > 0 {
			body.CreateParagraph()
		}
		body.CreateTextRun("• " + line).GetFont().SetName(st.BodyFont).SetSize(st.BodySize).SetColor(argb(st.BodyColor))
	}
}
