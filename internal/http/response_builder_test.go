package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
	"smartfinance/internal/session"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(http.StatusCreated, map[string]string{"id": "txn_1"}).
		Header("Location", "/api/transactions/txn_1").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if loc := w.Header().Get("Location"); loc != "/api/transactions/txn_1" {
		t.Errorf("Location = %q", loc)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"id":"txn_1"}` {
		t.Errorf("Body = %q", body)
	}
}

func TestResponseBuilder_RawAndEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Raw("application/yaml", []byte("a: 1\n")).Write(w)
	if w.Header().Get("Content-Type") != "application/yaml" || w.Body.String() != "a: 1\n" {
		t.Errorf("raw response = %q %q", w.Header().Get("Content-Type"), w.Body.String())
	}

	w = httptest.NewRecorder()
	NewResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("empty response = %d %q", w.Code, w.Body.String())
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(http.StatusOK, map[string]any{"bad": make(chan int)}).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"form error", &session.FormError{Fields: map[string]string{"email": "bad"}}, http.StatusUnprocessableEntity},
		{"import error", &records.ImportError{Reason: "transactions must be an array"}, http.StatusUnprocessableEntity},
		{"invalid amount", core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{"invalid type", fmt.Errorf("add: %w", core.ErrInvalidType), http.StatusUnprocessableEntity},
		{"terms", session.ErrTermsNotAccepted, http.StatusUnprocessableEntity},
		{"not found", records.ErrNotFound, http.StatusNotFound},
		{"category in use", records.ErrCategoryInUse, http.StatusConflict},
		{"credentials", session.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			w := httptest.NewRecorder()
			ErrorFor(req, tt.err).Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(w.Body.String(), "disk on fire") {
				t.Error("internal error details leaked")
			}
		})
	}
}

func TestUnprocessableEntityError_Fields(t *testing.T) {
	w := httptest.NewRecorder()
	UnprocessableEntityError("Please fix the errors below", map[string]string{"amount": "Invalid input"}).Write(w)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status code = %d", w.Code)
	}
	want := `{"error":"Please fix the errors below","fields":{"amount":"Invalid input"}}`
	if body := strings.TrimSpace(w.Body.String()); body != want {
		t.Errorf("Body = %s, want %s", body, want)
	}
}
