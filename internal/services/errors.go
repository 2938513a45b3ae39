package services

import (
	"errors"
	"fmt"

	"github.com/yungbote/deckforge-backend/internal/domain/outline"
	"github.com/yungbote/deckforge-backend/internal/platform/apierr"
	"github.com/yungbote/deckforge-backend/internal/render"
)

const (
	CodeInvalidInput        = apierr.InvalidInput
	CodeUnsupportedProvider = apierr.UnsupportedProvider
	CodeInvalidTemplate     = apierr.InvalidTemplate
	CodeGenerationFailed    = apierr.GenerationFailed
	CodeRenderFailed        = apierr.RenderFailed
)

// ValidationError is a caller mistake; nothing was sent to a backend.
type ValidationError struct {
	Code string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

func invalidInput(format string, args ...any) *ValidationError {
	return &ValidationError{Code: CodeInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedProviderError is returned for provider keys outside the catalog.
func UnsupportedProviderError(provider string) *ValidationError {
	return &ValidationError{Code: CodeUnsupportedProvider, Msg: fmt.Sprintf("unsupported LLM provider: %q", provider)}
}

func InvalidTemplateError(msg string) *ValidationError {
	return &ValidationError{Code: CodeInvalidTemplate, Msg: msg}
}

// GenerationError wraps backend failures and unusable model output.
type GenerationError struct {
	Provider string
	Msg      string
	Hint     string
	Err      error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	msg := "LLM processing failed: " + e.Msg
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ParseKind reports the outline parse failure kind, if any.
func (e *GenerationError) ParseKind() outline.ErrorKind {
	var perr *outline.ParseError
	if errors.As(e.Err, &perr) {
		return perr.Kind
	}
	return ""
}

// ToAPIError maps the service error taxonomy onto HTTP statuses.
func ToAPIError(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return apierr.New(ve.Code, ve)
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return apierr.New(CodeGenerationFailed, ge)
	}
	var re *render.Error
	if errors.As(err, &re) {
		return apierr.Hidden(CodeRenderFailed, "presentation creation failed", re)
	}
	return apierr.Hidden(apierr.Internal, "internal server error", err)
}
