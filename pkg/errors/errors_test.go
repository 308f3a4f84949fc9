package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInternal, http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{"invalid helper", Invalid("bad %s", "sort"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("loading: %w", ErrPresetNotFound), http.StatusNotFound},
		{"item not found", ErrItemNotFound, http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"source down", fmt.Errorf("refresh: %w", ErrSourceUnavailable), http.StatusServiceUnavailable},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "item %d is nil", 3)
	if !Is(err, ErrInvalidInput) {
		t.Fatal("expected AppError to unwrap to ErrInvalidInput")
	}
	if got, want := err.Error(), "invalid input: item 3 is nil"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPublic(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{"app error message shown", Invalid("unknown sort field %q", "colour"), http.StatusBadRequest, `unknown sort field "colour"`, "invalid_input"},
		{"wrapped sentinel", fmt.Errorf("preset %q: %w", "x", ErrPresetNotFound), http.StatusNotFound, "Not Found", "preset_not_found"},
		{"disabled", Disabled("preferences"), http.StatusServiceUnavailable, "preferences are disabled", "disabled"},
		{"internal detail hidden", errors.New("pq: password authentication failed"), http.StatusInternalServerError, "Internal Server Error", "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := Public(tt.err)
			if status != tt.wantStatus || resp.Error != tt.wantError || resp.Code != tt.wantCode {
				t.Errorf("Public() = %d %+v, want %d {%s %s}", status, resp, tt.wantStatus, tt.wantError, tt.wantCode)
			}
		})
	}
}
