package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/SAP-F-2025/quiz-engine/internal/errors"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

func TestValidateDefinitionValid(t *testing.T) {
	def := &models.QuizDefinition{
		Questions: []models.Question{
			{
				ID:            "q1",
				Type:          models.SingleChoice,
				Options:       choiceOptions(2),
				CorrectAnswer: json.RawMessage(`0`),
			},
			{
				ID:            "q2",
				Type:          models.FillBlank,
				ContentText:   "a [[x*]] b [[y]]",
				CorrectAnswer: json.RawMessage(`["x","y"]`),
			},
		},
	}

	assert.NoError(t, ValidateDefinition(def))
}

func TestValidateDefinitionFailures(t *testing.T) {
	tests := []struct {
		name     string
		question models.Question
	}{
		{
			name:     "missing id",
			question: models.Question{Type: models.ShortAnswer},
		},
		{
			name:     "choice with one option",
			question: models.Question{ID: "q1", Type: models.SingleChoice, Options: choiceOptions(1)},
		},
		{
			name:     "matching without pairs",
			question: models.Question{ID: "q1", Type: models.Matching},
		},
		{
			name: "gap answer vector misaligned",
			question: models.Question{
				ID:            "q1",
				Type:          models.TextCompletion,
				ContentText:   "a [[x]] b",
				CorrectAnswer: json.RawMessage(`["x","y"]`),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &models.QuizDefinition{Questions: []models.Question{tt.question}}

			err := ValidateDefinition(def)
			assert.Error(t, err)

			var validationErrors apperrors.ValidationErrors
			assert.ErrorAs(t, err, &validationErrors)
		})
	}
}
