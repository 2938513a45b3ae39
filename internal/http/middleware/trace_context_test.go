package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/deckforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.Nop()))
	r.GET("/health", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("unexpected request id header: got=%q want=%q", got, "req-123")
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("expected a minted trace id")
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID != rec.Header().Get(headerTraceID) {
		t.Fatalf("trace data not attached to request context: %+v", seen)
	}
}

func TestAttachTraceContextReplacesUnsafeIDs(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "bad id\" level=error")
	req.Header.Set(headerTraceID, strings.Repeat("a", 200))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	got := rec.Header().Get(headerRequestID)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected a minted request id, got=%q", got)
	}
	if trace := rec.Header().Get(headerTraceID); len(trace) == 200 {
		t.Fatalf("oversized trace id was echoed")
	}
}
