package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"magizhquiz/internal/service"
	"magizhquiz/internal/study"
	"magizhquiz/internal/validation"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deck not found", service.ErrDeckNotFound, http.StatusNotFound},
		{"card not found", service.ErrCardNotFound, http.StatusNotFound},
		{"access denied", service.ErrAccessDenied, http.StatusForbidden},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"already starred", service.ErrAlreadyStarred, http.StatusConflict},
		{"session completed", service.ErrSessionCompleted, http.StatusConflict},
		{"invalid quiz mode", service.ErrInvalidQuizMode, http.StatusBadRequest},
		{"empty card list", study.ErrNoCards, http.StatusBadRequest},
		{"validation error", validation.ValidationError{Field: "title", Message: "required"}, http.StatusBadRequest},
		{"wrapped sentinel", errors.Join(errors.New("context"), service.ErrDeckNotFound), http.StatusNotFound},
		{"demo disabled", service.ErrDemoLoginDisabled, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}
