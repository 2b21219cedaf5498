package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuizDefinitionOrdersQuestions(t *testing.T) {
	raw := []byte(`{
		"title": "Colors",
		"display_mode": "one_by_one",
		"questions": [
			{"id": "q2", "question_type": "short_answer", "order_index": 2},
			{"id": "q1", "question_type": "single_choice", "order_index": 1}
		]
	}`)

	def, err := ParseQuizDefinition(raw)
	require.NoError(t, err)

	assert.Equal(t, "Colors", def.Title)
	assert.Equal(t, "q1", def.Questions[0].ID)
	assert.Equal(t, "q2", def.Questions[1].ID)
}

func TestParseQuizDefinitionRejectsGarbage(t *testing.T) {
	_, err := ParseQuizDefinition([]byte(`not json`))
	assert.Error(t, err)
}

func TestEntryDisplayModeDefaultsToSequential(t *testing.T) {
	def := &QuizDefinition{}
	assert.Equal(t, DisplayOneByOne, def.EntryDisplayMode())

	def.DisplayMode = DisplayAllAtOnce
	assert.Equal(t, DisplayAllAtOnce, def.EntryDisplayMode())
}

func TestQuestionCorrectAnswerAccessors(t *testing.T) {
	q := Question{CorrectAnswer: json.RawMessage(`1`)}
	idx, ok := q.CorrectOptionIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	q = Question{CorrectAnswer: json.RawMessage(`[0,2]`)}
	assert.Equal(t, map[int]bool{0: true, 2: true}, q.CorrectOptionSet())

	q = Question{CorrectAnswer: json.RawMessage(`"colour | color |"`)}
	assert.Equal(t, []string{"colour", "color"}, q.AcceptedVariants())

	q = Question{CorrectAnswer: json.RawMessage(`["x","y"]`)}
	assert.Equal(t, []string{"x", "y"}, q.CorrectGapAnswers())

	q = Question{}
	_, ok = q.CorrectOptionIndex()
	assert.False(t, ok)
	assert.Nil(t, q.CorrectOptionSet())
}

func TestQuestionSeparator(t *testing.T) {
	q := Question{}
	assert.Equal(t, ",", q.Separator())

	q.GapSeparator = ";"
	assert.Equal(t, ";", q.Separator())
}

func TestHasLongText(t *testing.T) {
	def := &QuizDefinition{Questions: []Question{{ID: "q1", Type: SingleChoice}}}
	assert.False(t, def.HasLongText())

	def.Questions = append(def.Questions, Question{ID: "q2", Type: LongText})
	assert.True(t, def.HasLongText())
}
