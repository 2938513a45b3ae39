package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/deckforge-backend/internal/http/response"
	"github.com/yungbote/deckforge-backend/internal/platform/apierr"
	"github.com/yungbote/deckforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
	"github.com/yungbote/deckforge-backend/internal/services"
)

type outlineRequestBody struct {
	Text       string `json:"text"`
	Guidance   string `json:"guidance"`
	Tone       string `json:"tone"`
	Provider   string `json:"provider"`
	Credential string `json:"credential"`
}

func (b outlineRequestBody) toRequest() services.OutlineRequest {
	return services.OutlineRequest{
		Text:       b.Text,
		Guidance:   b.Guidance,
		Tone:       b.Tone,
		Provider:   b.Provider,
		Credential: b.Credential,
	}
}

type OutlineHandler struct {
	log       *logger.Logger
	generator services.OutlineGenerator
	timeout   time.Duration
}

// NewOutlineHandler serves outline-only requests on the request goroutine.
// A zero timeout leaves the call bounded only by the client connection.
func NewOutlineHandler(log *logger.Logger, generator services.OutlineGenerator, timeout time.Duration) *OutlineHandler {
	return &OutlineHandler{
		log:       log.With("handler", "OutlineHandler"),
		generator: generator,
		timeout:   timeout,
	}
}

// POST /api/outline
func (h *OutlineHandler) CreateOutline(c *gin.Context) {
	var body outlineRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, apierr.Hidden(apierr.InvalidInput, "request body must be a JSON object", err))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	o, err := h.generator.Generate(ctx, body.toRequest())
	if err != nil {
		ae := services.ToAPIError(err)
		if ae.Status() >= http.StatusInternalServerError {
			fields := append([]interface{}{"provider", body.Provider, "error", err}, ctxutil.LogFields(c.Request.Context())...)
			h.log.Warn("Outline generation failed", fields...)
		}
		response.RespondAPIError(c, ae)
		return
	}
	response.RespondOK(c, o)
}

// GET /api/providers
func (h *OutlineHandler) ListProviders(c *gin.Context) {
	response.RespondOK(c, h.generator.Providers())
}
