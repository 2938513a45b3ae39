package render

import (
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"
)

const previewTextRunes = 60

// SlidePreview is the text of one rendered slide, read from text boxes and
// placeholders. Title is the first non-empty paragraph found on the slide.
type SlidePreview struct {
	Index int      `json:"index"`
	Title string   `json:"title"`
	Texts []string `json:"texts,omitempty"`
}

func (r *DeckRenderer) Preview(path string) ([]SlidePreview, error) {
	reader := &ppt.PPTXReader{}
	pres, err := reader.Read(path)
	if err != nil {
		return nil, &Error{Op: "open deck", Err: err}
	}

	slides := pres.GetAllSlides()
	out := make([]SlidePreview, 0, len(slides))
	for i, slide := range slides {
		sp := SlidePreview{Index: i + 1}
		for _, shape := range slide.GetShapes() {
			var paras []*ppt.Paragraph
			switch sh := shape.(type) {
			case *ppt.RichTextShape:
				paras = sh.GetParagraphs()
			case *ppt.PlaceholderShape:
				paras = sh.GetParagraphs()
			default:
				continue
			}
			for _, para := range paras {
				var sb strings.Builder
				for _, elem := range para.GetElements() {
					if run, ok := elem.(*ppt.TextRun); ok {
						sb.WriteString(run.GetText())
					}
				}
				text := strings.TrimSpace(sb.String())
				if text == "" {
					continue
				}
				if sp.Title == "" {
					sp.Title = text
					continue
				}
				sp.Texts = append(sp.Texts, truncateRunes(text, previewTextRunes))
			}
		}
		out = append(out, sp)
	}
	return out, nil
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-2]) + ".."
}
