package grading

import (
	"strings"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// PassThreshold is the score/total ratio at which an attempt passes.
const PassThreshold = 0.5

// GapResult is the outcome of one gap comparison.
type GapResult struct {
	Index    int    `json:"index"`
	Expected string `json:"expected"`
	Given    string `json:"given"`
	Correct  bool   `json:"correct"`
}

// QuestionResult is the per-question detail of a scoring pass.
type QuestionResult struct {
	QuestionID  string              `json:"question_id"`
	Type        models.QuestionType `json:"type"`
	Earned      int                 `json:"earned"`
	Available   int                 `json:"available"`
	NeedsManual bool                `json:"needs_manual,omitempty"`
	Gaps        []GapResult         `json:"gaps,omitempty"`
}

// ScoreSummary is the result of scoring a heterogeneous question list.
type ScoreSummary struct {
	Score             int              `json:"score"`
	Total             int              `json:"total"`
	Results           []QuestionResult `json:"results"`
	NeedsManualReview bool             `json:"needs_manual_review"`
}

// Passed reports whether the summary meets the pass threshold. A quiz
// with no gradable questions passes vacuously.
func (s ScoreSummary) Passed() bool {
	if s.Total == 0 {
		return true
	}
	return float64(s.Score)/float64(s.Total) >= PassThreshold
}

// Percentage returns the score as a 0-100 percentage.
func (s ScoreSummary) Percentage() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Score) / float64(s.Total) * 100
}

// Score grades every question against the learner's answers. Gap
// questions read from the gap sub-collection first, falling back to a
// list value in the main collection. image_content contributes to
// neither score nor total. A missing or mismatched answer is wrong, not
// fatal.
func Score(questions []models.Question, answers *models.AnswerSet, gapAnswers *models.GapAnswerSet) ScoreSummary {
	summary := ScoreSummary{}
	for i := range questions {
		q := &questions[i]
		if !q.IsGradable() {
			continue
		}
		result := scoreQuestion(q, answers, gapAnswers)
		summary.Score += result.Earned
		summary.Total += result.Available
		if result.NeedsManual {
			summary.NeedsManualReview = true
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

func scoreQuestion(q *models.Question, answers *models.AnswerSet, gapAnswers *models.GapAnswerSet) QuestionResult {
	result := QuestionResult{QuestionID: q.ID, Type: q.Type}
	value, answered := answers.Get(q.ID)

	switch q.Type {
	case models.FillBlank, models.TextCompletion:
		return scoreGapQuestion(q, value, gapAnswers)

	case models.SingleChoice, models.MediaQuestion:
		result.Available = 1
		expected, ok := q.CorrectOptionIndex()
		if ok && answered && value.Kind == models.AnswerScalar && value.Number != nil && *value.Number == expected {
			result.Earned = 1
		}

	case models.MultipleChoice:
		result.Available = 1
		if answered && optionSetMatches(q.CorrectOptionSet(), value) {
			result.Earned = 1
		}

	case models.ShortAnswer, models.MediaOpenQuestion:
		result.Available = 1
		if answered && value.Kind == models.AnswerScalar && value.Text != nil {
			given := strings.ToLower(strings.TrimSpace(*value.Text))
			for _, variant := range q.AcceptedVariants() {
				if given == strings.ToLower(strings.TrimSpace(variant)) {
					result.Earned = 1
					break
				}
			}
		}

	case models.LongText:
		// Auto-credit for a non-empty response; real grading is a human
		// concern flagged through NeedsManual.
		result.Available = 1
		result.NeedsManual = true
		if answered && value.Kind == models.AnswerScalar && value.Text != nil &&
			strings.TrimSpace(*value.Text) != "" {
			result.Earned = 1
		}

	case models.Matching:
		result.Available = 1
		if answered && matchingCorrect(q.MatchingPairs, value) {
			result.Earned = 1
		}
	}

	return result
}

func scoreGapQuestion(q *models.Question, value models.AnswerValue, gapAnswers *models.GapAnswerSet) QuestionResult {
	result := QuestionResult{QuestionID: q.ID, Type: q.Type}
	expected := ExtractCorrectAnswers(q.ContentText, q.Separator())
	result.Available = len(expected)

	given := gapAnswers.Get(q.ID)
	if given == nil && value.Kind == models.AnswerList {
		given = value.Strings
	}

	for i, want := range expected {
		gap := GapResult{Index: i, Expected: want}
		if i < len(given) {
			gap.Given = given[i]
			gap.Correct = strings.EqualFold(strings.TrimSpace(gap.Given), strings.TrimSpace(want))
		}
		if gap.Correct {
			result.Earned++
		}
		result.Gaps = append(result.Gaps, gap)
	}
	return result
}

// optionSetMatches requires exact set equality, not subset or superset.
func optionSetMatches(expected map[int]bool, value models.AnswerValue) bool {
	if value.Kind != models.AnswerList || expected == nil {
		return false
	}
	selected := make(map[int]bool, len(value.Numbers))
	for _, i := range value.Numbers {
		selected[i] = true
	}
	if len(selected) != len(expected) {
		return false
	}
	for i := range expected {
		if !selected[i] {
			return false
		}
	}
	return true
}

// matchingCorrect is all-or-nothing permutation equality: every left
// side must map to its authored right side. Both the pair-map shape and
// a plain index permutation (identity when correct) are accepted.
func matchingCorrect(pairs []models.MatchPair, value models.AnswerValue) bool {
	if len(pairs) == 0 {
		return false
	}
	switch value.Kind {
	case models.AnswerPairMap:
		if len(value.Entries) != len(pairs) {
			return false
		}
		chosen := make(map[string]string, len(value.Entries))
		for _, e := range value.Entries {
			chosen[e.Left] = e.Right
		}
		for _, p := range pairs {
			if chosen[p.Left] != p.Right {
				return false
			}
		}
		return true
	case models.AnswerList:
		if len(value.Numbers) != len(pairs) {
			return false
		}
		for i, j := range value.Numbers {
			if i != j {
				return false
			}
		}
		return true
	}
	return false
}
