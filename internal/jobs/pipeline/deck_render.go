package pipelines

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	"github.com/yungbote/deckforge-backend/internal/jobs/runtime"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
	"github.com/yungbote/deckforge-backend/internal/render"
	"github.com/yungbote/deckforge-backend/internal/services"
)

const DeckRenderJobType = "deck_render"

// DeckRenderInput is handed to the runner in memory. It holds the caller's
// credential and is never written to the task store.
type DeckRenderInput struct {
	Request      services.OutlineRequest
	TemplatePath string
	OutputPath   string
}

// ArtifactUploader copies a finished deck somewhere durable and returns its key.
type ArtifactUploader interface {
	Upload(ctx context.Context, taskID, localPath string) (string, error)
}

type DeckRenderPipeline struct {
	log       *logger.Logger
	generator services.OutlineGenerator
	renderer  render.Renderer
	artifacts ArtifactUploader
}

// NewDeckRenderPipeline wires the pipeline. artifacts may be nil.
func NewDeckRenderPipeline(baseLog *logger.Logger, generator services.OutlineGenerator, renderer render.Renderer, artifacts ArtifactUploader) *DeckRenderPipeline {
	return &DeckRenderPipeline{
		log:       baseLog.With("job", DeckRenderJobType),
		generator: generator,
		renderer:  renderer,
		artifacts: artifacts,
	}
}

func (p *DeckRenderPipeline) Type() string { return DeckRenderJobType }

func (p *DeckRenderPipeline) Run(jc *runtime.Context) error {
	ctx := jc.Ctx
	in, ok := jc.Payload().(DeckRenderInput)
	if !ok {
		jc.Fail("validate", errors.New("missing deck render input"))
		return nil
	}
	if strings.TrimSpace(in.OutputPath) == "" {
		jc.Fail("validate", errors.New("missing output path"))
		return nil
	}

	jc.Progress(10, "Generating outline")
	o, err := p.generator.Generate(ctx, in.Request)
	if err != nil {
		jc.Fail("outline", err)
		return nil
	}

	jc.Progress(50, "Rendering presentation")
	res, err := p.renderer.Render(ctx, o, in.TemplatePath, in.OutputPath)
	if err != nil {
		jc.Fail("render", err)
		return nil
	}

	jc.Progress(90, "Saving presentation")
	jc.SetOutputPath(res.Path)

	warnings := make([]tasks.Warning, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, tasks.Warning{Slide: w.Slide, Message: w.Message})
	}
	result := &tasks.Result{
		Title:      o.Title,
		SlideCount: res.SlideCount,
		FileName:   DeckFileName(o.Title),
	}
	if p.artifacts != nil {
		key, err := p.artifacts.Upload(ctx, jc.Task.ID, res.Path)
		if err != nil {
			// The local copy still serves downloads.
			jc.Log.Warn("Deck upload failed", "error", err)
			warnings = append(warnings, tasks.Warning{Message: "deck was not copied to artifact storage"})
		} else {
			result.ArtifactKey = key
		}
	}

	if in.TemplatePath != "" {
		if err := os.Remove(in.TemplatePath); err != nil && !os.IsNotExist(err) {
			jc.Log.Warn("Template cleanup failed", "path", filepath.Base(in.TemplatePath), "error", err)
		}
	}

	jc.Succeed("Presentation ready", result, warnings)
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N} _.-]+`)

// DeckFileName derives a download name from the deck title.
func DeckFileName(title string) string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(title, ""))
	name = strings.Join(strings.Fields(name), "_")
	name = strings.Trim(name, ".")
	if r := []rune(name); len(r) > 80 {
		name = string(r[:80])
	}
	if name == "" {
		name = "presentation"
	}
	return name + ".pptx"
}
