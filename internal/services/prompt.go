package services

import (
	"fmt"
	"strings"
)

const (
	promptTextLimit = 2000
	defaultGuidance = "Standard presentation"
	DefaultTone     = "professional"

	SystemPrompt = "You are a JSON generator. Return only valid JSON, no other text."
)

const promptTemplate = `Convert this text into a presentation structure.

Text: %s...

Guidance: %s
Tone: %s

Respond with ONLY this JSON format (no other text):
{
    "title": "Your presentation title here",
    "slides": [
        {
            "type": "title",
            "title": "Main Title",
            "subtitle": "Subtitle if needed",
            "speaker_notes": "Introduction notes"
        },
        {
            "type": "content",
            "title": "First Topic",
            "content": ["Point 1", "Point 2", "Point 3"],
            "speaker_notes": "Explanation for this slide"
        }
    ]
}

Create 5-10 slides total. Return ONLY valid JSON.`

// BuildPrompt renders the single user instruction sent to every backend.
// Text is cut at promptTextLimit characters.
func BuildPrompt(text, guidance, tone string) string {
	if strings.TrimSpace(guidance) == "" {
		guidance = defaultGuidance
	}
	if strings.TrimSpace(tone) == "" {
		tone = DefaultTone
	}
	return fmt.Sprintf(promptTemplate, truncateRunes(text, promptTextLimit), guidance, tone)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
