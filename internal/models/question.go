package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type QuestionType string

const (
	SingleChoice      QuestionType = "single_choice"
	MultipleChoice    QuestionType = "multiple_choice"
	ShortAnswer       QuestionType = "short_answer"
	LongText          QuestionType = "long_text"
	FillBlank         QuestionType = "fill_blank"
	TextCompletion    QuestionType = "text_completion"
	Matching          QuestionType = "matching"
	MediaQuestion     QuestionType = "media_question"
	MediaOpenQuestion QuestionType = "media_open_question"
	ImageContent      QuestionType = "image_content"
)

type DisplayMode string

const (
	DisplayOneByOne  DisplayMode = "one_by_one"
	DisplayAllAtOnce DisplayMode = "all_at_once"
)

// DefaultGapSeparator delimits candidates inside a [[...]] gap marker
// unless the question overrides it.
const DefaultGapSeparator = ","

type QuestionOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Letter    string `json:"letter,omitempty"`
}

type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Question is the discriminated union for all authored question kinds,
// tagged by question_type. CorrectAnswer stays raw because its shape
// depends on the tag: an option index, a set of indices, a pipe-delimited
// variant string, or an ordered gap-answer list. The typed accessors
// below decode it per variant.
type Question struct {
	ID          string       `json:"id" validate:"required"`
	Type        QuestionType `json:"question_type" validate:"required,question_type"`
	Points      int          `json:"points"`
	OrderIndex  int          `json:"order_index"`
	Explanation string       `json:"explanation,omitempty"`

	Options        []QuestionOption `json:"options,omitempty"`
	ContentText    string           `json:"content_text,omitempty"`
	GapSeparator   string           `json:"gap_separator,omitempty"`
	MatchingPairs  []MatchPair      `json:"matching_pairs,omitempty"`
	ExpectedLength int              `json:"expected_length,omitempty"`
	Keywords       []string         `json:"keywords,omitempty"`

	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty"`
}

func (q *Question) IsChoice() bool {
	return q.Type == SingleChoice || q.Type == MultipleChoice || q.Type == MediaQuestion
}

func (q *Question) IsGapType() bool {
	return q.Type == FillBlank || q.Type == TextCompletion
}

func (q *Question) IsFreeText() bool {
	return q.Type == ShortAnswer || q.Type == MediaOpenQuestion || q.Type == LongText
}

// IsGradable reports whether the question contributes to score and total.
// image_content blocks are display-only.
func (q *Question) IsGradable() bool {
	return q.Type != ImageContent
}

// Separator returns the gap candidate separator, defaulting to comma.
func (q *Question) Separator() string {
	if q.GapSeparator == "" {
		return DefaultGapSeparator
	}
	return q.GapSeparator
}

// CorrectOptionIndex decodes correct_answer for single_choice and
// media_question variants.
func (q *Question) CorrectOptionIndex() (int, bool) {
	var idx int
	if err := json.Unmarshal(q.CorrectAnswer, &idx); err != nil {
		return 0, false
	}
	return idx, true
}

// CorrectOptionSet decodes correct_answer for multiple_choice variants
// into a set of option indices.
func (q *Question) CorrectOptionSet() map[int]bool {
	var indices []int
	if err := json.Unmarshal(q.CorrectAnswer, &indices); err != nil {
		return nil
	}
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return set
}

// AcceptedVariants decodes correct_answer for short_answer and
// media_open_question variants: a pipe-delimited list of accepted
// strings, trimmed, empties dropped.
func (q *Question) AcceptedVariants() []string {
	var raw string
	if err := json.Unmarshal(q.CorrectAnswer, &raw); err != nil {
		return nil
	}
	parts := strings.Split(raw, "|")
	variants := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}

// CorrectGapAnswers decodes the authored gap-answer vector for
// fill_blank and text_completion variants. Grading derives the
// canonical vector from content_text instead; this accessor exists for
// definition validation and authoring previews.
func (q *Question) CorrectGapAnswers() []string {
	var answers []string
	if err := json.Unmarshal(q.CorrectAnswer, &answers); err != nil {
		return nil
	}
	return answers
}

// QuizDefinition is a lesson step's quiz content. Immutable from the
// learner's perspective during an attempt; author edits produce a new
// content version detected by hashing the serialized form.
type QuizDefinition struct {
	Title       string      `json:"title"`
	DisplayMode DisplayMode `json:"display_mode" validate:"omitempty,display_mode"`
	Questions   []Question  `json:"questions"`
}

// QuestionByID returns the question with the given id, if present.
func (d *QuizDefinition) QuestionByID(id string) (*Question, bool) {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return &d.Questions[i], true
		}
	}
	return nil, false
}

// EntryDisplayMode returns the display mode with the sequential default
// applied.
func (d *QuizDefinition) EntryDisplayMode() DisplayMode {
	if d.DisplayMode == DisplayAllAtOnce {
		return DisplayAllAtOnce
	}
	return DisplayOneByOne
}

// HasLongText reports whether any question defers grading to a human.
func (d *QuizDefinition) HasLongText() bool {
	for i := range d.Questions {
		if d.Questions[i].Type == LongText {
			return true
		}
	}
	return false
}

// ParseQuizDefinition decodes a step's serialized quiz content and
// orders questions by order_index.
func ParseQuizDefinition(raw []byte) (*QuizDefinition, error) {
	var def QuizDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("failed to parse quiz definition: %w", err)
	}
	sort.SliceStable(def.Questions, func(i, j int) bool {
		return def.Questions[i].OrderIndex < def.Questions[j].OrderIndex
	})
	return &def, nil
}
