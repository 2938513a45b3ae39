package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/deckforge-backend/internal/domain/outline"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

// Warning records a styling fallback that did not abort the render.
// Slide is 1-based; 0 means the deck as a whole.
type Warning struct {
	Slide   int    `json:"slide"`
	Message string `json:"message"`
}

type Result struct {
	Path       string    `json:"-"`
	SlideCount int       `json:"slide_count"`
	Warnings   []Warning `json:"warnings,omitempty"`
}

func (r *Result) warn(slide int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Slide: slide, Message: fmt.Sprintf(format, args...)})
}

// Error is a render failure: the template could not be opened or the deck
// could not be built or saved.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "render " + e.Op
	}
	return "render " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

type Renderer interface {
	// Render writes outputPath. templatePath may be empty.
	Render(ctx context.Context, o *outline.SlideOutline, templatePath, outputPath string) (*Result, error)
	Preview(path string) ([]SlidePreview, error)
}

type DeckRenderer struct {
	log   *logger.Logger
	style Style
}

func New(baseLog *logger.Logger, style Style) *DeckRenderer {
	return &DeckRenderer{log: baseLog.With("component", "DeckRenderer"), style: style}
}

func (r *DeckRenderer) Render(ctx context.Context, o *outline.SlideOutline, templatePath, outputPath string) (*Result, error) {
	if o == nil || len(o.Slides) == 0 {
		return nil, &Error{Op: "validate outline", Err: fmt.Errorf("outline has no slides")}
	}
	if strings.TrimSpace(outputPath) == "" {
		return nil, &Error{Op: "validate output", Err: fmt.Errorf("output path is empty")}
	}

	_, span := otel.Tracer("deckforge/render").Start(ctx, "render.deck")
	defer span.End()
	span.SetAttributes(
		attribute.Int("deck.slides", len(o.Slides)),
		attribute.Bool("deck.template", templatePath != ""),
	)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prepare output")
		return nil, &Error{Op: "prepare output", Err: err}
	}

	var (
		res *Result
		err error
	)
	if strings.TrimSpace(templatePath) != "" {
		res, err = r.renderTemplate(o, templatePath, outputPath)
	} else {
		res, err = r.renderBasic(o, outputPath)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render")
		_ = os.Remove(outputPath)
		return nil, err
	}
	res.Path = outputPath
	span.SetAttributes(attribute.Int("deck.warnings", len(res.Warnings)))

	r.log.Info("Deck rendered",
		"slides", res.SlideCount,
		"warnings", len(res.Warnings),
		"template", templatePath != "",
		"output", filepath.Base(outputPath),
	)
	return res, nil
}
