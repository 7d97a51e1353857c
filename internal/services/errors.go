package services

import (
	"errors"

	apperrors "github.com/EduQuest-2025/quizplayer-service/internal/errors"
	"github.com/EduQuest-2025/quizplayer-service/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Activity specific errors
	ErrActivityNotFound       = errors.New("activity not found")
	ErrActivityEmpty          = errors.New("activity has no question units")
	ErrActivityMalformed      = errors.New("activity contains a malformed question unit")
	ErrActivityDuplicateTitle = errors.New("activity title already exists for this creator")
	ErrActivityNotDeletable   = errors.New("activity cannot be deleted in current status")

	// Session specific errors. Terminal-state and double-submit conditions
	// are reported with the session package's own sentinels.
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotFinished = errors.New("session has not reached its terminal state")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, session.ErrSessionNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrActivityDuplicateTitle) ||
		errors.Is(err, session.ErrPageAlreadySubmitted)
}

// IsUnplayable checks if error means the activity cannot enter play at all.
// All three load failures abort the session without retry.
func IsUnplayable(err error) bool {
	return errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrActivityEmpty) ||
		errors.Is(err, ErrActivityMalformed)
}
