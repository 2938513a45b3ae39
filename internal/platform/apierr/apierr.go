// Package apierr holds the error codes clients see in the
// {"error":{"message","code"}} envelope and the status each code is served with.
package apierr

import "net/http"

const (
	InvalidInput        = "invalid_input"
	UnsupportedProvider = "unsupported_provider"
	InvalidTemplate     = "invalid_template"
	GenerationFailed    = "generation_failed"
	RenderFailed        = "render_failed"
	RunnerUnavailable   = "runner_unavailable"
	FileNotFound        = "file_not_found"
	TaskNotFound        = "task_not_found"
	TaskNotCompleted    = "task_not_completed"
	Internal            = "internal_error"
)

var statusByCode = map[string]int{
	InvalidInput:        http.StatusBadRequest,
	UnsupportedProvider: http.StatusBadRequest,
	InvalidTemplate:     http.StatusBadRequest,
	GenerationFailed:    http.StatusBadGateway,
	RenderFailed:        http.StatusInternalServerError,
	RunnerUnavailable:   http.StatusServiceUnavailable,
	FileNotFound:        http.StatusNotFound,
	TaskNotFound:        http.StatusNotFound,
	TaskNotCompleted:    http.StatusConflict,
	Internal:            http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for code. Unknown codes are 500.
func StatusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Message is what the client sees; Err keeps
// the cause for logs and may carry detail the client must not see.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Status() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	return StatusFor(e.Code)
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// New reports err's text to the client.
func New(code string, err error) *Error {
	ae := &Error{Code: code, Err: err}
	if err != nil {
		ae.Message = err.Error()
	}
	return ae
}

// Hidden reports msg to the client and keeps err for logs only.
func Hidden(code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}
