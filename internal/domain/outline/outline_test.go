package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIsIdempotent(t *testing.T) {
	o := &SlideOutline{
		Slides: []Slide{
			{Type: "title"},
			{Type: "weird", Title: "  "},
			{Type: SlideContent, Title: "Body", Content: []string{"a"}},
		},
	}
	require.NoError(t, Validate(o))

	once := *o
	once.Slides = append([]Slide(nil), o.Slides...)

	require.NoError(t, Validate(o))
	assert.Equal(t, once, *o)
	assert.Equal(t, "Slide 2", o.Slides[1].Title)
	assert.Equal(t, []string{DefaultContentPoint}, o.Slides[1].Content)
}

func TestValidateRejectsEmptyOutline(t *testing.T) {
	assert.Error(t, Validate(&SlideOutline{Title: "x"}))
	assert.Error(t, Validate(nil))
}

func TestNormalizeSlideType(t *testing.T) {
	assert.Equal(t, SlideTitle, NormalizeSlideType(" Title "))
	assert.Equal(t, SlideSection, NormalizeSlideType("section"))
	assert.Equal(t, SlideContent, NormalizeSlideType(""))
	assert.Equal(t, SlideContent, NormalizeSlideType("bullet"))
}
