package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	"qualitivate/internal/httpx"
	"qualitivate/internal/service"
	"qualitivate/internal/storage"
)

type validationResponse struct {
	Error            string   `json:"error"`
	MissingQuestions []string `json:"missing_questions,omitempty"`
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Every handler funnels unexpected errors through here so the 500 path
// logs exactly once.
func writeServiceError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		httpx.JSON(w, http.StatusBadRequest, validationResponse{
			Error:            validation.Message,
			MissingQuestions: validation.MissingQuestions,
		})
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, service.ErrSurveyNotActive),
		errors.Is(err, service.ErrSurveyNotPublic):
		// A private survey looks absent to unauthenticated callers.
		httpx.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		httpx.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrSurveyNotStarted):
		httpx.Error(w, http.StatusNotFound, "survey has not started yet")
	case errors.Is(err, service.ErrSurveyEnded):
		httpx.Error(w, http.StatusNotFound, "survey has ended")
	case errors.Is(err, service.ErrSurveyHasResponses):
		httpx.Error(w, http.StatusConflict, "survey already has responses")
	case errors.Is(err, storage.ErrUserExist):
		httpx.Error(w, http.StatusConflict, "user already exists")
	case errors.Is(err, storage.ErrConflict):
		httpx.Error(w, http.StatusConflict, "conflict")
	case errors.Is(err, service.PasswordIncorrect), errors.Is(err, service.TokenIncorrect):
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrEmailSenderMissing):
		httpx.Error(w, http.StatusServiceUnavailable, "email sending is not configured")
	default:
		slog.Error("request failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
