package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	StepID    *uint      `json:"step_id"`
	LearnerID *uint      `json:"learner_id"`
	IsDraft   *bool      `json:"is_draft"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// AttemptRepository is the server-side attempt store: the system of
// record for quiz progress.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	Update(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)

	// ListByStep returns a learner's attempts for one step, most recent
	// first.
	ListByStep(ctx context.Context, stepID, learnerID uint) ([]*models.QuizAttempt, error)

	List(ctx context.Context, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
}

// StepRepository resolves lesson steps and their serialized quiz
// definitions.
type StepRepository interface {
	GetByID(ctx context.Context, id uint) (*models.LessonStep, error)
}

// Repository aggregates the store interfaces handed to services.
type Repository interface {
	Attempt() AttemptRepository
	Step() StepRepository
}

// IsNotFoundError checks if error represents a "record not found" condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
