package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	PasswordIncorrect = errors.New("password incorrect")
	TokenIncorrect    = errors.New("token incorrect")

	ErrForbidden          = errors.New("forbidden")
	ErrSurveyNotActive    = errors.New("survey is not active")
	ErrSurveyNotStarted   = errors.New("survey has not started yet")
	ErrSurveyEnded        = errors.New("survey has ended")
	ErrSurveyNotPublic    = errors.New("survey requires authentication")
	ErrSurveyHasResponses = errors.New("survey with responses cannot be reopened")
	ErrEmailSenderMissing = errors.New("email sender is not configured")
)

// ValidationError reports malformed input rejected before any mutation.
// MissingQuestions is populated when a completion attempt lacks required
// answers.
type ValidationError struct {
	Message          string
	MissingQuestions []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingQuestions) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.MissingQuestions, ", "))
	}
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
