package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-engine/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Step specific errors
	ErrStepNotFound      = errors.New("lesson step not found")
	ErrStepNotQuiz       = errors.New("lesson step does not contain a quiz definition")
	ErrDefinitionInvalid = errors.New("quiz definition is invalid")

	// Session specific errors
	ErrSessionNotFound     = errors.New("no active session for step")
	ErrSessionClosed       = errors.New("session has been closed")
	ErrSessionNotActive    = errors.New("session is not accepting answers in its current state")
	ErrQuestionNotFound    = errors.New("question not found in quiz definition")
	ErrAnswerShapeMismatch = errors.New("answer shape does not fit the question type")
	ErrGapIndexOutOfRange  = errors.New("gap index outside the passage's gap count")

	// Attempt specific errors
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAttemptFinalized  = errors.New("attempt is already finalized")
	ErrFinalizeFailed    = errors.New("failed to persist finalized attempt")
	ErrNothingToFinalize = errors.New("quiz has not been completed")
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
		errors.Is(err, ErrStepNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrDefinitionInvalid) ||
		errors.Is(err, ErrAnswerShapeMismatch) ||
		errors.Is(err, ErrGapIndexOutOfRange) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrAttemptFinalized) ||
		errors.Is(err, ErrNothingToFinalize)
}

// wrapf keeps sentinel identity while adding call-site context.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
