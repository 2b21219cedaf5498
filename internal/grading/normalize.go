// Package grading implements the pure quiz-grading core: text
// normalization shared between authoring and grading, gap extraction
// from passage text, and type-specific scoring.
package grading

import (
	"regexp"
	"strings"
)

var (
	tagPattern      = regexp.MustCompile(`<[^<>]*>`)
	openTagAtEnd    = regexp.MustCompile(`<[^<>]*$`)
	closeTagAtStart = regexp.MustCompile(`^[^<>]*>`)
)

// entityReplacer decodes the fixed entity set produced by the rich-text
// authoring surface. The set is deliberately closed: grading must
// reproduce exactly what the authoring preview does, nothing more.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// Normalize strips authoring markup from gap text. The pipeline order
// is load-bearing and shared verbatim by the extractor and the scorer:
// remove the * correct-candidate markers, decode entities, strip tags
// (repeating until no angle brackets remain, so malformed or
// unterminated tags at either boundary are removed too), then trim.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "*", "")
	s = entityReplacer.Replace(s)
	for strings.ContainsAny(s, "<>") {
		next := tagPattern.ReplaceAllString(s, "")
		next = openTagAtEnd.ReplaceAllString(next, "")
		next = closeTagAtStart.ReplaceAllString(next, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}
