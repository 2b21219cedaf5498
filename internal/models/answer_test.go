package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValueWireShapes(t *testing.T) {
	tests := []struct {
		name     string
		value    AnswerValue
		expected string
	}{
		{"option index", OptionAnswer(2), `2`},
		{"free text", TextAnswer("blue"), `"blue"`},
		{"option set", OptionSetAnswer(0, 2), `[0,2]`},
		{"gap list", ListAnswer("blue", "emerald"), `["blue","emerald"]`},
		{
			"pair map envelope",
			PairMapAnswer(PairEntry{Left: "cat", Right: "meow"}),
			`{"kind":"pairmap","entries":[["cat","meow"]]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))

			var decoded AnswerValue
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.True(t, tt.value.Equal(decoded), "decoded %+v", decoded)
		})
	}
}

func TestAnswerValueRejectsUnknownEnvelope(t *testing.T) {
	var v AnswerValue
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"mystery","entries":[]}`), &v))
	assert.Error(t, json.Unmarshal([]byte(``), &v))
}

func TestAnswerSetRoundTrip(t *testing.T) {
	set := NewAnswerSet()
	set.Set("q1", OptionAnswer(1))
	set.Set("q2", TextAnswer("an essay"))
	set.Set("q3", PairMapAnswer(
		PairEntry{Left: "cat", Right: "meow"},
		PairEntry{Left: "dog", Right: "woof"},
	))

	data, err := json.Marshal(set)
	require.NoError(t, err)

	decoded := NewAnswerSet()
	require.NoError(t, json.Unmarshal(data, decoded))

	assert.True(t, set.Equal(decoded))
	assert.Equal(t, []string{"q1", "q2", "q3"}, decoded.QuestionIDs())
}

func TestAnswerSetWireFormatIsPairList(t *testing.T) {
	set := NewAnswerSet()
	set.Set("q1", OptionAnswer(0))
	set.Set("q2", ListAnswer("x"))

	data, err := json.Marshal(set)
	require.NoError(t, err)

	assert.JSONEq(t, `[["q1",0],["q2",["x"]]]`, string(data))
}

func TestAnswerSetCorruptEntryIsIsolated(t *testing.T) {
	// q2 carries an undecodable value; q1 and q3 must still load.
	blob := `[["q1",1],["q2",{"kind":"bogus"}],["q3","ok"]]`

	set := NewAnswerSet()
	require.NoError(t, json.Unmarshal([]byte(blob), set))

	assert.Equal(t, 2, set.Len())
	_, ok := set.Get("q2")
	assert.False(t, ok)

	v, ok := set.Get("q3")
	require.True(t, ok)
	assert.Equal(t, "ok", *v.Text)
}

func TestAnswerSetSetOverwritesKeepingOrder(t *testing.T) {
	set := NewAnswerSet()
	set.Set("q1", OptionAnswer(0))
	set.Set("q2", OptionAnswer(1))
	set.Set("q1", OptionAnswer(2))

	assert.Equal(t, []string{"q1", "q2"}, set.QuestionIDs())
	v, _ := set.Get("q1")
	assert.Equal(t, 2, *v.Number)
}

func TestAnswerSetClone(t *testing.T) {
	set := NewAnswerSet()
	set.Set("q1", TextAnswer("a"))

	clone := set.Clone()
	clone.Set("q2", TextAnswer("b"))

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestGapAnswerSetPositionAlignment(t *testing.T) {
	set := NewGapAnswerSet()
	set.SetGap("q1", 2, "third")

	assert.Equal(t, []string{"", "", "third"}, set.Get("q1"))

	set.SetGap("q1", 0, "first")
	assert.Equal(t, []string{"first", "", "third"}, set.Get("q1"))

	// negative indexes are ignored
	set.SetGap("q1", -1, "nope")
	assert.Equal(t, []string{"first", "", "third"}, set.Get("q1"))
}

func TestGapAnswerSetRoundTrip(t *testing.T) {
	set := NewGapAnswerSet()
	set.SetGap("q1", 0, "blue")
	set.SetGap("q1", 1, "emerald")
	set.SetGap("q2", 0, "x")

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `[["q1",["blue","emerald"]],["q2",["x"]]]`, string(data))

	decoded := NewGapAnswerSet()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"blue", "emerald"}, decoded.Get("q1"))
	assert.Equal(t, []string{"x"}, decoded.Get("q2"))
}

func TestQuizAttemptDecodeTolerant(t *testing.T) {
	attempt := &QuizAttempt{Answers: []byte(`not json`), GapAnswers: []byte(`{"also":"wrong"}`)}

	assert.Equal(t, 0, attempt.DecodeAnswers().Len())
	assert.Equal(t, 0, attempt.DecodeGapAnswers().Len())

	attempt = &QuizAttempt{}
	assert.Equal(t, 0, attempt.DecodeAnswers().Len())
}
