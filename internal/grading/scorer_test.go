package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

func TestScoreSingleChoiceAndFillBlank(t *testing.T) {
	questions := []models.Question{
		{
			ID:            "q1",
			Type:          models.SingleChoice,
			Options:       choiceOptions(3),
			CorrectAnswer: json.RawMessage(`1`),
		},
		{
			ID:          "q2",
			Type:        models.FillBlank,
			ContentText: "The sky is [[blue*,azure]] and grass is [[green]]",
		},
	}

	answers := models.NewAnswerSet()
	answers.Set("q1", models.OptionAnswer(1))

	gapAnswers := models.NewGapAnswerSet()
	gapAnswers.SetGap("q2", 0, "blue")
	gapAnswers.SetGap("q2", 1, "purple")

	summary := Score(questions, answers, gapAnswers)

	assert.Equal(t, 2, summary.Score)
	assert.Equal(t, 3, summary.Total)
	assert.False(t, summary.NeedsManualReview)
}

func TestScoreImageContentIgnored(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.ImageContent},
		{ID: "q2", Type: models.SingleChoice, CorrectAnswer: json.RawMessage(`0`)},
	}

	summary := Score(questions, models.NewAnswerSet(), models.NewGapAnswerSet())

	assert.Equal(t, 1, summary.Total)
	assert.Len(t, summary.Results, 1)
}

func TestScoreMultipleChoiceExactSetEquality(t *testing.T) {
	question := models.Question{
		ID:            "q1",
		Type:          models.MultipleChoice,
		Options:       choiceOptions(4),
		CorrectAnswer: json.RawMessage(`[0,2]`),
	}

	tests := []struct {
		name     string
		selected []int
		earned   int
	}{
		{"exact match", []int{0, 2}, 1},
		{"order does not matter", []int{2, 0}, 1},
		{"subset is wrong", []int{0}, 0},
		{"superset is wrong", []int{0, 2, 3}, 0},
		{"disjoint is wrong", []int{1, 3}, 0},
		{"empty is wrong", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := models.NewAnswerSet()
			answers.Set("q1", models.OptionSetAnswer(tt.selected...))

			summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())
			assert.Equal(t, tt.earned, summary.Score)
		})
	}
}

func TestScoreShortAnswerVariants(t *testing.T) {
	question := models.Question{
		ID:            "q1",
		Type:          models.ShortAnswer,
		CorrectAnswer: json.RawMessage(`"colour | color"`),
	}

	tests := []struct {
		given  string
		earned int
	}{
		{"colour", 1},
		{"COLOR", 1},
		{"  color  ", 1},
		{"couleur", 0},
		{"", 0},
	}

	for _, tt := range tests {
		answers := models.NewAnswerSet()
		answers.Set("q1", models.TextAnswer(tt.given))

		summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())
		assert.Equal(t, tt.earned, summary.Score, "given %q", tt.given)
	}
}

func TestScoreLongTextNeedsManualReview(t *testing.T) {
	question := models.Question{ID: "q1", Type: models.LongText}

	answers := models.NewAnswerSet()
	answers.Set("q1", models.TextAnswer("a considered essay"))

	summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())

	assert.Equal(t, 1, summary.Score)
	assert.True(t, summary.NeedsManualReview)

	// Empty text earns nothing but manual review is still required.
	empty := models.NewAnswerSet()
	empty.Set("q1", models.TextAnswer("   "))

	summary = Score([]models.Question{question}, empty, models.NewGapAnswerSet())
	assert.Equal(t, 0, summary.Score)
	assert.True(t, summary.NeedsManualReview)
}

func TestScoreMatching(t *testing.T) {
	question := models.Question{
		ID:   "q1",
		Type: models.Matching,
		MatchingPairs: []models.MatchPair{
			{Left: "cat", Right: "meow"},
			{Left: "dog", Right: "woof"},
		},
	}

	t.Run("correct pair map", func(t *testing.T) {
		answers := models.NewAnswerSet()
		answers.Set("q1", models.PairMapAnswer(
			models.PairEntry{Left: "dog", Right: "woof"},
			models.PairEntry{Left: "cat", Right: "meow"},
		))

		summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())
		assert.Equal(t, 1, summary.Score)
	})

	t.Run("one swapped pair fails all-or-nothing", func(t *testing.T) {
		answers := models.NewAnswerSet()
		answers.Set("q1", models.PairMapAnswer(
			models.PairEntry{Left: "cat", Right: "woof"},
			models.PairEntry{Left: "dog", Right: "meow"},
		))

		summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())
		assert.Equal(t, 0, summary.Score)
	})

	t.Run("identity permutation", func(t *testing.T) {
		answers := models.NewAnswerSet()
		answers.Set("q1", models.OptionSetAnswer(0, 1))

		summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())
		assert.Equal(t, 1, summary.Score)
	})

	t.Run("non-identity permutation", func(t *testing.T) {
		answers := models.NewAnswerSet()
		answers.Set("q1", models.OptionSetAnswer(1, 0))

		summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())
		assert.Equal(t, 0, summary.Score)
	})
}

func TestScoreGapAnswersFallBackToListValue(t *testing.T) {
	question := models.Question{
		ID:          "q1",
		Type:        models.TextCompletion,
		ContentText: "[[alpha*]] then [[beta*]]",
	}

	// No gap sub-collection entry; the batched list in the main
	// collection is used instead.
	answers := models.NewAnswerSet()
	answers.Set("q1", models.ListAnswer("Alpha", "gamma"))

	summary := Score([]models.Question{question}, answers, models.NewGapAnswerSet())

	assert.Equal(t, 1, summary.Score)
	assert.Equal(t, 2, summary.Total)

	result := summary.Results[0]
	assert.True(t, result.Gaps[0].Correct)
	assert.False(t, result.Gaps[1].Correct)
	assert.Equal(t, "beta", result.Gaps[1].Expected)
}

func TestScoreMissingAnswersAreWrongNotFatal(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.SingleChoice, CorrectAnswer: json.RawMessage(`0`)},
		{ID: "q2", Type: models.FillBlank, ContentText: "[[x]]"},
	}

	summary := Score(questions, models.NewAnswerSet(), models.NewGapAnswerSet())

	assert.Equal(t, 0, summary.Score)
	assert.Equal(t, 2, summary.Total)
}

func TestScoreSummaryPassed(t *testing.T) {
	assert.True(t, ScoreSummary{Score: 2, Total: 3}.Passed())
	assert.True(t, ScoreSummary{Score: 1, Total: 2}.Passed())
	assert.False(t, ScoreSummary{Score: 1, Total: 3}.Passed())

	// No gradable questions passes vacuously.
	empty := ScoreSummary{}
	assert.True(t, empty.Passed())
	assert.Equal(t, 100.0, empty.Percentage())
}

func choiceOptions(n int) []models.QuestionOption {
	options := make([]models.QuestionOption, n)
	for i := range options {
		options[i] = models.QuestionOption{ID: string(rune('a' + i)), Text: "option"}
	}
	return options
}
