package outline

import (
	"fmt"
	"strings"
)

type SlideType string

const (
	SlideTitle   SlideType = "title"
	SlideSection SlideType = "section"
	SlideContent SlideType = "content"
)

const (
	DefaultDeckTitle    = "Generated Presentation"
	DefaultContentPoint = "Main point for this slide"
)

// NormalizeSlideType maps free-form type strings onto the closed set.
// Missing and unknown values collapse to content.
func NormalizeSlideType(raw string) SlideType {
	switch SlideType(strings.ToLower(strings.TrimSpace(raw))) {
	case SlideTitle:
		return SlideTitle
	case SlideSection:
		return SlideSection
	default:
		return SlideContent
	}
}

type Slide struct {
	Type         SlideType `json:"type"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle,omitempty"`
	Content      []string  `json:"content,omitempty"`
	SpeakerNotes string    `json:"speaker_notes"`
}

type SlideOutline struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// Normalize fills defaults by slide index. Running it on an already
// normalized outline changes nothing.
func (o *SlideOutline) Normalize() {
	if o == nil {
		return
	}
	if strings.TrimSpace(o.Title) == "" {
		o.Title = DefaultDeckTitle
	}
	for i := range o.Slides {
		s := &o.Slides[i]
		s.Type = NormalizeSlideType(string(s.Type))
		if strings.TrimSpace(s.Title) == "" {
			s.Title = fmt.Sprintf("Slide %d", i+1)
		}
		if strings.TrimSpace(s.SpeakerNotes) == "" {
			s.SpeakerNotes = fmt.Sprintf("Notes for slide %d", i+1)
		}
		if s.Type == SlideContent && len(s.Content) == 0 {
			s.Content = []string{DefaultContentPoint}
		}
	}
}

// Validate checks structural requirements and applies defaults in place.
func Validate(o *SlideOutline) error {
	if o == nil {
		return &ParseError{Kind: KindInvalidStructure, Msg: "outline is nil"}
	}
	if len(o.Slides) == 0 {
		return &ParseError{Kind: KindInvalidStructure, Msg: "outline has no slides"}
	}
	o.Normalize()
	return nil
}

func (o *SlideOutline) SlideCount() int {
	if o == nil {
		return 0
	}
	return len(o.Slides)
}
