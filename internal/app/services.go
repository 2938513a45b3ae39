package app

import (
	"fmt"

	"github.com/yungbote/deckforge-backend/internal/config"
	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	pipelines "github.com/yungbote/deckforge-backend/internal/jobs/pipeline"
	"github.com/yungbote/deckforge-backend/internal/jobs/runtime"
	"github.com/yungbote/deckforge-backend/internal/jobs/worker"
	"github.com/yungbote/deckforge-backend/internal/llm"
	"github.com/yungbote/deckforge-backend/internal/platform/gcp"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
	"github.com/yungbote/deckforge-backend/internal/render"
	"github.com/yungbote/deckforge-backend/internal/services"
)

type Services struct {
	Generator services.OutlineGenerator
	Renderer  *render.DeckRenderer
	Runner    *worker.Runner
}

func llmSettings(cfg config.LLMConfig) llm.Settings {
	return llm.Settings{
		OpenAIModel:      cfg.OpenAIModel,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		AnthropicModel:   cfg.AnthropicModel,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		GeminiModel:      cfg.GeminiModel,
		GeminiBaseURL:    cfg.GeminiBaseURL,
		Timeout:          cfg.HTTPTimeout,
	}
}

// NewGenerator is shared by the server and the one-shot CLI commands.
func NewGenerator(log *logger.Logger, cfg *config.Config) services.OutlineGenerator {
	return services.NewOutlineGenerator(log, llm.NewCatalog(llmSettings(cfg.LLM)), services.OutlineGeneratorOptions{
		LenientJSON:  cfg.Outline.LenientJSON,
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: cfg.LLM.RetryBackoff,
	})
}

func wireServices(log *logger.Logger, cfg *config.Config, store tasks.Store, bucket gcp.DeckBucket) (Services, error) {
	log.Info("Wiring services...")
	generator := NewGenerator(log, cfg)
	renderer := render.New(log, render.DefaultStyle())

	var uploader pipelines.ArtifactUploader
	if bucket != nil {
		uploader = bucket
	}

	registry, err := runtime.NewRegistry(pipelines.NewDeckRenderPipeline(log, generator, renderer, uploader))
	if err != nil {
		return Services{}, fmt.Errorf("register job handlers: %w", err)
	}

	return Services{
		Generator: generator,
		Renderer:  renderer,
		Runner:    worker.NewRunner(log, store, registry, cfg.Worker.Concurrency),
	}, nil
}
