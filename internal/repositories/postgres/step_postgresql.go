package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
)

type StepPostgreSQL struct {
	db *gorm.DB
}

func NewStepPostgreSQL(db *gorm.DB) repositories.StepRepository {
	return &StepPostgreSQL{db: db}
}

func (s StepPostgreSQL) GetByID(ctx context.Context, id uint) (*models.LessonStep, error) {
	var step models.LessonStep
	if err := s.db.WithContext(ctx).First(&step, id).Error; err != nil {
		return nil, err
	}
	return &step, nil
}
