package grading

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-engine/internal/errors"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// ValidateDefinition checks the structural invariants a quiz definition
// must hold before a session can run against it: choice questions carry
// at least two options, matching questions carry pairs, and gap
// questions keep their authored answer vector aligned with the gaps in
// the passage text.
func ValidateDefinition(def *models.QuizDefinition) error {
	var errs apperrors.ValidationErrors

	for i := range def.Questions {
		q := &def.Questions[i]
		field := fmt.Sprintf("questions[%d]", i)

		if q.ID == "" {
			errs = append(errs, *apperrors.NewValidationError(field+".id", "is required", nil))
		}

		switch {
		case q.IsChoice() && len(q.Options) < 2:
			errs = append(errs, *apperrors.NewValidationError(
				field+".options", "choice questions need at least 2 options", len(q.Options)))

		case q.Type == models.Matching && len(q.MatchingPairs) == 0:
			errs = append(errs, *apperrors.NewValidationError(
				field+".matching_pairs", "matching questions need at least one pair", nil))

		case q.IsGapType():
			gapCount := CountGaps(q.ContentText)
			if authored := q.CorrectGapAnswers(); authored != nil && len(authored) != gapCount {
				errs = append(errs, *apperrors.NewValidationError(
					field+".correct_answer",
					fmt.Sprintf("answer vector length %d does not match %d gaps", len(authored), gapCount),
					nil))
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
