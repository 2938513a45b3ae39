package app

import (
	"github.com/yungbote/deckforge-backend/internal/config"
	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	httpH "github.com/yungbote/deckforge-backend/internal/http/handlers"
	"github.com/yungbote/deckforge-backend/internal/platform/gcp"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Outline *httpH.OutlineHandler
	Task    *httpH.TaskHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, svcs Services, store tasks.Store, bucket gcp.DeckBucket) Handlers {
	log.Info("Wiring handlers...")
	opts := httpH.TaskHandlerOptions{
		ScratchDir:     cfg.Storage.ScratchDir,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}
	if bucket != nil {
		opts.Artifacts = bucket
	}
	return Handlers{
		Health:  httpH.NewHealthHandler(Version),
		Outline: httpH.NewOutlineHandler(log, svcs.Generator, cfg.LLM.RequestTimeout),
		Task:    httpH.NewTaskHandler(log, store, svcs.Generator, svcs.Runner, svcs.Renderer, opts),
	}
}
