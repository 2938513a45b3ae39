package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/deckforge-backend/internal/platform/apierr"
)

func TestRespondAPIErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondAPIError(c, apierr.New(apierr.GenerationFailed, errors.New("LLM processing failed: empty response from LLM")))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadGateway)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Error.Code != "generation_failed" {
		t.Fatalf("unexpected code: got=%q", env.Error.Code)
	}
	if env.Error.Message != "LLM processing failed: empty response from LLM" {
		t.Fatalf("unexpected message: got=%q", env.Error.Message)
	}
}

func TestRespondErrorWithoutCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondAPIError(c, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusInternalServerError)
	}
	if !c.IsAborted() {
		t.Fatalf("expected context to be aborted")
	}
}

func TestRespondAPIErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondAPIError(c, apierr.Hidden(apierr.RenderFailed, "presentation creation failed", errors.New("disk full at /srv/outputs")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusInternalServerError)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Error.Message != "presentation creation failed" {
		t.Fatalf("cause leaked into message: got=%q", env.Error.Message)
	}
}
