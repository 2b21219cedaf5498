package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Save(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) ListByStep(ctx context.Context, stepID, learnerID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	err := a.db.WithContext(ctx).
		Where("step_id = ? AND learner_id = ?", stepID, learnerID).
		Order("updated_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	// apply filters first
	query := a.db.WithContext(ctx).Model(&models.QuizAttempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("updated_at DESC").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.StepID != nil {
		query = query.Where("step_id = ?", *filters.StepID)
	}
	if filters.LearnerID != nil {
		query = query.Where("learner_id = ?", *filters.LearnerID)
	}
	if filters.IsDraft != nil {
		query = query.Where("is_draft = ?", *filters.IsDraft)
	}
	if filters.DateFrom != nil {
		query = query.Where("updated_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("updated_at <= ?", *filters.DateTo)
	}
	return query
}
