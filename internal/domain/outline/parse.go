package outline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

type ErrorKind string

const (
	KindEmpty            ErrorKind = "empty_response"
	KindInvalidJSON      ErrorKind = "invalid_json"
	KindInvalidStructure ErrorKind = "invalid_structure"
)

type ParseError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

type ParseOptions struct {
	// Lenient runs the cleaned text through jsonrepair when strict decoding fails.
	Lenient bool
}

const rawPrefixLen = 100

// fenceRe matches fence lines only, so backticks inside JSON strings survive.
var fenceRe = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+.-]*[ \t]*$")

// Clean strips code fences and any prose around the outermost braces.
func Clean(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimSpace(fenceRe.ReplaceAllString(cleaned, ""))

	if first := strings.Index(cleaned, "{"); first > 0 {
		cleaned = cleaned[first:]
	}
	if last := strings.LastIndex(cleaned, "}"); last > 0 && last < len(cleaned)-1 {
		cleaned = cleaned[:last+1]
	}
	return cleaned
}

// Parse turns raw model output into a validated outline.
func Parse(raw string, opts ParseOptions) (*SlideOutline, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Kind: KindEmpty, Msg: "empty response from LLM"}
	}

	cleaned := Clean(raw)

	var root any
	if err := json.Unmarshal([]byte(cleaned), &root); err != nil {
		repaired, ok := tryRepair(cleaned, opts)
		if !ok {
			return nil, &ParseError{
				Kind: KindInvalidJSON,
				Msg:  fmt.Sprintf("Invalid JSON from LLM. Response started with: %s...", prefix(raw, rawPrefixLen)),
				Err:  err,
			}
		}
		root = repaired
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, &ParseError{Kind: KindInvalidStructure, Msg: "response is not a JSON object"}
	}
	rawSlides, ok := obj["slides"]
	if !ok {
		return nil, &ParseError{Kind: KindInvalidStructure, Msg: "no 'slides' key found in response"}
	}
	list, ok := rawSlides.([]any)
	if !ok || len(list) == 0 {
		return nil, &ParseError{Kind: KindInvalidStructure, Msg: "'slides' must be a non-empty list"}
	}

	out := &SlideOutline{
		Title:  stringField(obj, "title"),
		Slides: make([]Slide, 0, len(list)),
	}
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Kind: KindInvalidStructure, Msg: fmt.Sprintf("slide %d is not a JSON object", i+1)}
		}
		out.Slides = append(out.Slides, Slide{
			Type:         SlideType(stringField(m, "type")),
			Title:        stringField(m, "title"),
			Subtitle:     stringField(m, "subtitle"),
			Content:      contentField(m["content"]),
			SpeakerNotes: stringField(m, "speaker_notes"),
		})
	}

	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func tryRepair(cleaned string, opts ParseOptions) (any, bool) {
	if !opts.Lenient {
		return nil, false
	}
	fixed, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return nil, false
	}
	var root any
	if err := json.Unmarshal([]byte(fixed), &root); err != nil {
		return nil, false
	}
	return root, true
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func contentField(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case nil:
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
