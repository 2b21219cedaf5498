package grading

import (
	"regexp"
	"strings"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// gapMarker matches one non-overlapping [[...]] span. Gaps are
// positional, ordered by first appearance in a left-to-right scan.
var gapMarker = regexp.MustCompile(`\[\[(.*?)\]\]`)

// GapSpec is one extracted fill-in-the-blank slot: the normalized
// candidate strings and which one counts as correct.
type GapSpec struct {
	Candidates   []string
	CorrectIndex int
}

// Correct returns the accepted answer for the gap.
func (g GapSpec) Correct() string {
	return g.Candidates[g.CorrectIndex]
}

// ExtractGaps parses every gap marker out of passage text. Within a
// span, candidates are separator-delimited; a candidate carrying the *
// marker is the correct one, otherwise the first candidate is. Empty
// candidates are dropped around normalization; if the chosen candidate
// does not survive, the first surviving one is promoted, and if nothing
// survives the raw first piece is kept so extraction never yields a gap
// with zero options.
func ExtractGaps(text, separator string) []GapSpec {
	if separator == "" {
		separator = models.DefaultGapSeparator
	}
	matches := gapMarker.FindAllStringSubmatch(text, -1)
	gaps := make([]GapSpec, 0, len(matches))
	for _, m := range matches {
		gaps = append(gaps, parseGap(m[1], separator))
	}
	return gaps
}

func parseGap(inner, separator string) GapSpec {
	raw := strings.Split(inner, separator)
	for i := range raw {
		raw[i] = strings.TrimSpace(raw[i])
	}

	// Correctness is decided on the raw pieces, before any dropping.
	marked := -1
	for i, piece := range raw {
		if strings.Contains(piece, "*") {
			marked = i
			break
		}
	}
	if marked == -1 {
		marked = 0
	}

	candidates := make([]string, 0, len(raw))
	correct := -1
	for i, piece := range raw {
		normalized := Normalize(piece)
		if normalized == "" {
			continue
		}
		candidates = append(candidates, normalized)
		if i == marked {
			correct = len(candidates) - 1
		}
	}

	if len(candidates) == 0 {
		// Every candidate vanished under normalization; keep the raw
		// first piece so the gap still has one option.
		fallback := strings.TrimSpace(strings.ReplaceAll(raw[0], "*", ""))
		candidates = append(candidates, fallback)
	}
	if correct == -1 {
		correct = 0
	}
	return GapSpec{Candidates: candidates, CorrectIndex: correct}
}

// ExtractCorrectAnswers returns the accepted answer per gap in gap
// order: the canonical expected-answer vector used for grading and
// auto-fill.
func ExtractCorrectAnswers(text, separator string) []string {
	gaps := ExtractGaps(text, separator)
	answers := make([]string, len(gaps))
	for i, g := range gaps {
		answers[i] = g.Correct()
	}
	return answers
}

// CountGaps returns the number of gap markers in passage text.
func CountGaps(text string) int {
	return len(gapMarker.FindAllStringIndex(text, -1))
}
