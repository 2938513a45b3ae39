package render

import (
	"strings"

	"baliance.com/gooxml/presentation"
	"baliance.com/gooxml/schema/soo/dml"
)

const (
	fontSampleSlides  = 3
	colorSampleSlides = 2

	// Run sizes (points) that separate title, subtitle and body text.
	titleRunPt    = 24
	subtitleRunPt = 18
)

// styledRun is the part of a template text run the renderer learns from.
type styledRun struct {
	sizePt float64 // 0 when the run inherits its size
	font   string
	color  string // literal sRGB fill, "" otherwise
}

// sampleTemplateStyle reads fonts from the first slides of a template and
// colors from the first two. Fields the template does not show keep base.
func sampleTemplateStyle(base Style, slides []presentation.Slide) Style {
	return mergeSampledRuns(base,
		slideRuns(slides, fontSampleSlides),
		slideRuns(slides, colorSampleSlides))
}

// mergeSampledRuns buckets runs by size. Later runs win.
func mergeSampledRuns(st Style, fontRuns, colorRuns []styledRun) Style {
	for _, r := range fontRuns {
		if r.font == "" {
			continue
		}
		switch {
		case r.sizePt > titleRunPt:
			st.TitleFont = r.font
		case r.sizePt > subtitleRunPt:
			st.SubtitleFont = r.font
		default:
			st.BodyFont = r.font
		}
	}
	for _, r := range colorRuns {
		if !validHex(r.color) {
			continue
		}
		if r.sizePt > titleRunPt {
			st.TitleColor = r.color
		} else {
			st.BodyColor = r.color
		}
	}
	return st
}

func slideRuns(slides []presentation.Slide, n int) []styledRun {
	if len(slides) > n {
		slides = slides[:n]
	}
	var out []styledRun
	for _, s := range slides {
		x := s.X()
		if x == nil || x.CSld == nil || x.CSld.SpTree == nil {
			continue
		}
		for _, c := range x.CSld.SpTree.Choice {
			for _, sp := range c.Sp {
				if sp.TxBody == nil {
					continue
				}
				out = append(out, textBodyRuns(sp.TxBody)...)
			}
		}
	}
	return out
}

func textBodyRuns(body *dml.CT_TextBody) []styledRun {
	var out []styledRun
	for _, p := range body.P {
		for _, tr := range p.EG_TextRun {
			if tr.R == nil || strings.TrimSpace(tr.R.T) == "" || tr.R.RPr == nil {
				continue
			}
			out = append(out, runStyle(tr.R.RPr))
		}
	}
	return out
}

func runStyle(rp *dml.CT_TextCharacterProperties) styledRun {
	var r styledRun
	if rp.SzAttr != nil {
		r.sizePt = float64(*rp.SzAttr) / 100
	}
	if rp.Latin != nil {
		r.font = rp.Latin.TypefaceAttr
	}
	if rp.SolidFill != nil && rp.SolidFill.SrgbClr != nil {
		r.color = strings.ToUpper(rp.SolidFill.SrgbClr.ValAttr)
	}
	return r
}
