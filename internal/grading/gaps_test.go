package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractGaps(t *testing.T) {
	text := "The sky is [[blue*,azure,cyan]] and grass is [[green,emerald*]]"

	gaps := ExtractGaps(text, ",")

	assert.Len(t, gaps, 2)
	assert.Equal(t, []string{"blue", "azure", "cyan"}, gaps[0].Candidates)
	assert.Equal(t, "blue", gaps[0].Correct())
	assert.Equal(t, []string{"green", "emerald"}, gaps[1].Candidates)
	assert.Equal(t, "emerald", gaps[1].Correct())
}

func TestExtractGapsUnmarkedDefaultsToFirst(t *testing.T) {
	gaps := ExtractGaps("pick [[red,green,blue]]", ",")

	assert.Len(t, gaps, 1)
	assert.Equal(t, 0, gaps[0].CorrectIndex)
	assert.Equal(t, "red", gaps[0].Correct())
}

func TestExtractGapsMarkedAnyPosition(t *testing.T) {
	gaps := ExtractGaps("pick [[red,green,blue*]]", ",")

	assert.Len(t, gaps, 1)
	assert.Equal(t, "blue", gaps[0].Correct())
}

func TestExtractGapsCustomSeparator(t *testing.T) {
	gaps := ExtractGaps("pick [[one, two;three*]]", ";")

	assert.Len(t, gaps, 1)
	assert.Equal(t, []string{"one, two", "three"}, gaps[0].Candidates)
	assert.Equal(t, "three", gaps[0].Correct())
}

func TestExtractGapsEmptySeparatorUsesDefault(t *testing.T) {
	gaps := ExtractGaps("pick [[a,b*]]", "")

	assert.Len(t, gaps, 1)
	assert.Equal(t, "b", gaps[0].Correct())
}

func TestExtractGapsDropsEmptyCandidates(t *testing.T) {
	gaps := ExtractGaps("pick [[ ,red,blue]]", ",")

	assert.Len(t, gaps, 1)
	assert.Equal(t, []string{"red", "blue"}, gaps[0].Candidates)
	// The empty first piece was the default correct one; the first
	// survivor is promoted.
	assert.Equal(t, "red", gaps[0].Correct())
}

func TestExtractGapsNormalizesCandidates(t *testing.T) {
	gaps := ExtractGaps("pick [[<strong>bold*</strong>,plain]]", ",")

	assert.Len(t, gaps, 1)
	assert.Equal(t, []string{"bold", "plain"}, gaps[0].Candidates)
	assert.Equal(t, "bold", gaps[0].Correct())
}

func TestExtractGapsAllCandidatesVanish(t *testing.T) {
	gaps := ExtractGaps("pick [[<p></p>,&nbsp;]]", ",")

	// Extraction never yields a gap with zero options; the raw first
	// piece survives un-normalized.
	assert.Len(t, gaps, 1)
	assert.Len(t, gaps[0].Candidates, 1)
	assert.Equal(t, "<p></p>", gaps[0].Candidates[0])
}

func TestExtractGapsNoMarkers(t *testing.T) {
	assert.Empty(t, ExtractGaps("no gaps here", ","))
}

func TestExtractCorrectAnswers(t *testing.T) {
	text := "The sky is [[blue*,azure]] and grass is [[green,emerald*]]"

	assert.Equal(t, []string{"blue", "emerald"}, ExtractCorrectAnswers(text, ","))
}

func TestCountGaps(t *testing.T) {
	assert.Equal(t, 0, CountGaps("plain text"))
	assert.Equal(t, 2, CountGaps("a [[x]] b [[y,z]] c"))
}
