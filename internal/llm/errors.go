package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// APIError is a non-2xx reply from a provider endpoint.
type APIError struct {
	Provider Provider
	Status   int
	Body     string
	Err      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// SDK error texts carrying the HTTP status: go-openai ("status code: 401"),
// anthropic-sdk-go (`POST "url": 401 Unauthorized`) and genai ("Error 401,").
var statusRe = regexp.MustCompile(`(?:status code: |": |Error )([1-5][0-9]{2})\b`)

func statusOf(err error) int {
	m := statusRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// toAPIError lifts SDK errors that name an HTTP status into *APIError.
func toAPIError(p Provider, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	status := statusOf(err)
	if status == 0 {
		return err
	}
	return &APIError{Provider: p, Status: status, Body: err.Error(), Err: err}
}

type classifiedModel struct {
	provider Provider
	inner    model.BaseChatModel
}

func classify(p Provider, cm model.BaseChatModel) model.BaseChatModel {
	return &classifiedModel{provider: p, inner: cm}
}

func (m *classifiedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	msg, err := m.inner.Generate(ctx, input, opts...)
	if err != nil {
		return nil, toAPIError(m.provider, err)
	}
	return msg, nil
}

func (m *classifiedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, err := m.inner.Stream(ctx, input, opts...)
	if err != nil {
		return nil, toAPIError(m.provider, err)
	}
	return sr, nil
}

// IsCredentialError reports whether err text looks like a rejected key.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return true
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "api key") ||
		strings.Contains(lower, "api_key") ||
		strings.Contains(lower, "x-api-key") ||
		strings.Contains(msg, "401")
}

// IsTransient reports whether a retry could plausibly succeed: rate limits,
// server errors and timeouts. Credential errors are never transient.
func IsTransient(err error) bool {
	if err == nil || IsCredentialError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	lower := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "timeout", "overloaded", "status code: 5", "502", "503", "504"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
