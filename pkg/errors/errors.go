// Package errors holds the sentinel errors shared by the services and maps
// them onto HTTP responses. Import it as apperrors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrPresetNotFound    = errors.New("preset not found")
	ErrSourceUnavailable = errors.New("item source unavailable")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflicting update")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrDisabled          = errors.New("feature disabled")
	ErrInternal          = errors.New("internal error")
	ErrTimeout           = errors.New("operation timed out")
)

// codes are the machine-readable names sent alongside error messages.
var codes = []struct {
	sentinel error
	code     string
	status   int
}{
	{ErrItemNotFound, "item_not_found", http.StatusNotFound},
	{ErrPresetNotFound, "preset_not_found", http.StatusNotFound},
	{ErrSourceUnavailable, "source_unavailable", http.StatusServiceUnavailable},
	{ErrInvalidInput, "invalid_input", http.StatusBadRequest},
	{ErrConflict, "conflict", http.StatusConflict},
	{ErrRateLimited, "rate_limited", http.StatusTooManyRequests},
	{ErrDisabled, "disabled", http.StatusServiceUnavailable},
	{ErrTimeout, "timeout", http.StatusServiceUnavailable},
}

// AppError carries a caller-facing message and status for a sentinel.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusCode}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return New(sentinel, statusCode, fmt.Sprintf(format, args...))
}

// Invalid is shorthand for a 400 wrapping ErrInvalidInput.
func Invalid(format string, args ...any) *AppError {
	return Newf(ErrInvalidInput, http.StatusBadRequest, format, args...)
}

// Disabled reports that an optional subsystem is not configured.
func Disabled(feature string) *AppError {
	return Newf(ErrDisabled, http.StatusServiceUnavailable, "%s are disabled", feature)
}

// Is mirrors errors.Is for callers importing this package as errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As mirrors errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// HTTPStatusCode picks the response status for err. An AppError's own status
// wins; otherwise the first matching sentinel decides.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.status
		}
	}
	return http.StatusInternalServerError
}

// Code is the machine-readable name of err's sentinel, or "internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return "internal"
}

// Response is the JSON body every service writes for a failed request.
type Response struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Public renders err for a caller. Only AppError messages are exposed;
// anything else collapses to the status text so internals never leak.
func Public(err error) (int, Response) {
	status := HTTPStatusCode(err)
	resp := Response{Error: http.StatusText(status), Code: Code(err)}
	var appErr *AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
	}
	return status, resp
}
