package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/deckforge-backend/internal/config"
	apphttp "github.com/yungbote/deckforge-backend/internal/http"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

func routerConfig(log *logger.Logger, cfg *config.Config, handlers Handlers) apphttp.RouterConfig {
	rc := apphttp.RouterConfig{
		Log:            log,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		HealthHandler:  handlers.Health,
		OutlineHandler: handlers.Outline,
		TaskHandler:    handlers.Task,
	}
	if cfg.Tracing.Enabled {
		rc.ServiceName = cfg.Tracing.ServiceName
	}
	return rc
}

func wireServer(log *logger.Logger, cfg *config.Config, handlers Handlers) *apphttp.Server {
	if mode := cfg.Log.Mode; mode == "prod" || mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return apphttp.NewServer(log, routerConfig(log, cfg, handlers), apphttp.ServerOptions{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	})
}
