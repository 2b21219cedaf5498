package postgres

import (
	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
)

type postgresRepository struct {
	attempt repositories.AttemptRepository
	step    repositories.StepRepository
}

// NewRepository builds the GORM-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		attempt: NewAttemptPostgreSQL(db),
		step:    NewStepPostgreSQL(db),
	}
}

func (r *postgresRepository) Attempt() repositories.AttemptRepository {
	return r.attempt
}

func (r *postgresRepository) Step() repositories.StepRepository {
	return r.step
}
