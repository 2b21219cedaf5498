package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "blue", "blue"},
		{"strips star marker", "blue*", "blue"},
		{"strips star anywhere", "bl*ue", "blue"},
		{"decodes nbsp", "deep&nbsp;blue", "deep blue"},
		{"decodes amp", "salt &amp; pepper", "salt & pepper"},
		{"decodes quot", "&quot;blue&quot;", `"blue"`},
		{"decodes apostrophe", "it&#39;s", "it's"},
		{"strips tags", "<p>blue</p>", "blue"},
		{"strips nested tags", "<p><strong>blue</strong></p>", "blue"},
		{"strips unterminated tag at end", "blue<span class=", "blue"},
		{"strips dangling close at start", `span">blue`, "blue"},
		{"decoded angle brackets become tags and are stripped", "&lt;b&gt;blue&lt;/b&gt;", "blue"},
		{"trims whitespace", "  blue  ", "blue"},
		{"tag with attributes", `<span style="color: red">blue</span>`, "blue"},
		{"empty after stripping", "<p></p>", ""},
		{"nbsp only", "&nbsp;", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"blue*",
		"<p>deep&nbsp;blue</p>",
		"  salt &amp; pepper  ",
		"blue<span",
		`<span style="x">a</span> b <i>c`,
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}
