package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
)

// ExportService produces downloadable result sheets for a step's quiz
// attempts.
type ExportService interface {
	ExportStepResultsToExcel(ctx context.Context, stepID uint) ([]byte, error)
	ExportStepResultsToCSV(ctx context.Context, stepID uint) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultHeaders = []string{
	"Attempt ID", "Learner ID", "Status", "Score", "Total Questions",
	"Percentage", "Result", "Graded", "Time Spent (minutes)", "Updated At",
}

func (s *exportService) ExportStepResultsToExcel(ctx context.Context, stepID uint) ([]byte, error) {
	attempts, err := s.getStepAttempts(ctx, stepID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range resultHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		for colIndex, value := range s.attemptToRow(attempt) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported step results", "step_id", stepID, "attempts", len(attempts), "format", "xlsx")
	return buf.Bytes(), nil
}

func (s *exportService) ExportStepResultsToCSV(ctx context.Context, stepID uint) ([]byte, error) {
	attempts, err := s.getStepAttempts(ctx, stepID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, attempt := range attempts {
		row := s.attemptToRow(attempt)
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = fmt.Sprintf("%v", value)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.Info("Exported step results", "step_id", stepID, "attempts", len(attempts), "format", "csv")
	return []byte(buf.String()), nil
}

func (s *exportService) getStepAttempts(ctx context.Context, stepID uint) ([]*models.QuizAttempt, error) {
	if _, err := s.repo.Step().GetByID(ctx, stepID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to get lesson step: %w", err)
	}

	attempts, _, err := s.repo.Attempt().List(ctx, repositories.AttemptFilters{StepID: &stepID})
	if err != nil {
		return nil, fmt.Errorf("failed to list step attempts: %w", err)
	}
	return attempts, nil
}

func (s *exportService) attemptToRow(attempt *models.QuizAttempt) []interface{} {
	status := "completed"
	if attempt.IsDraft {
		status = "draft"
	}

	result := "Fail"
	if attempt.Passed() {
		result = "Pass"
	}
	if attempt.IsDraft {
		result = ""
	}

	return []interface{}{
		attempt.ID,
		attempt.LearnerID,
		status,
		attempt.CorrectAnswers,
		attempt.TotalQuestions,
		strconv.FormatFloat(attempt.ScorePercentage, 'f', 1, 64),
		result,
		attempt.IsGraded,
		attempt.TimeSpentSeconds / 60,
		attempt.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
