package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/deckforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/deckforge-backend/internal/http/middleware"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	HealthHandler  *httpH.HealthHandler
	OutlineHandler *httpH.OutlineHandler
	TaskHandler    *httpH.TaskHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.AllowedOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.OutlineHandler != nil {
			api.POST("/outline", cfg.OutlineHandler.CreateOutline)
			api.GET("/providers", cfg.OutlineHandler.ListProviders)
		}

		if cfg.TaskHandler != nil {
			api.POST("/generate", cfg.TaskHandler.Generate)
			api.GET("/tasks/:id", cfg.TaskHandler.GetTask)
			api.GET("/tasks/:id/download", cfg.TaskHandler.Download)
			api.GET("/tasks/:id/preview", cfg.TaskHandler.Preview)
		}
	}

	return r
}
