package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_Kinds(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrTokenExpired, http.StatusUnauthorized},
		{domain.ErrAccountDisabled, http.StatusForbidden},
		{fmt.Errorf("view reports: %w", domain.ErrForbidden), http.StatusForbidden},
		{domain.ErrApplicationNotFound, http.StatusNotFound},
		{domain.ErrFileMissing, http.StatusNotFound},
		{domain.ErrUserExists, http.StatusConflict},
		{fmt.Errorf("%w (from APPROVED to REJECTED)", domain.ErrInvalidTransition), http.StatusConflict},
		{domain.ErrConcurrentUpdate, http.StatusConflict},
		{domain.ErrUnknownStatus, http.StatusBadRequest},
		{domain.ErrFileTooLarge, http.StatusBadRequest},
		{echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, body := renderError(t, tt.err)
			if code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, code)
			}
			if body["error"] == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	err := domain.NewValidationError(map[string]string{"contactEmail": "Contact Email must be a valid email"})
	code, body := renderError(t, err)

	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	fields, ok := body["fields"].(map[string]any)
	if !ok || fields["contactEmail"] != "Contact Email must be a valid email" {
		t.Fatalf("expected field map, got %v", body)
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	code, body := renderError(t, errors.New("mongo: connection refused on 10.0.0.3"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("internal detail leaked: %v", body)
	}
}
