package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"magizhquiz/internal/service"
	"magizhquiz/internal/study"
	"magizhquiz/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service-layer errors onto HTTP statuses.
// Unknown errors are logged and reported as a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrDeckNotFound),
		errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrAlreadyStarred),
		errors.Is(err, service.ErrNotStarred),
		errors.Is(err, service.ErrAlreadyBookmarked),
		errors.Is(err, service.ErrNotBookmarked),
		errors.Is(err, service.ErrUsernameAlreadySet),
		errors.Is(err, service.ErrSessionCompleted),
		errors.Is(err, service.ErrSessionFull):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrDeckFull),
		errors.Is(err, service.ErrCannotStarOwn),
		errors.Is(err, service.ErrInvalidQuizMode),
		errors.Is(err, service.ErrNoCardsForQuiz),
		errors.Is(err, service.ErrCardNotInSession),
		errors.Is(err, service.ErrNothingToComplete),
		errors.Is(err, service.ErrInvalidImportFile),
		errors.Is(err, service.ErrMissingCSVHeader),
		errors.Is(err, service.ErrOAuthStateInvalid),
		errors.Is(err, study.ErrNoCards):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrDemoLoginDisabled),
		errors.Is(err, service.ErrOAuthNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())

	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
