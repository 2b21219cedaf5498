package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerKind tags the shape of a learner answer so one collection can
// hold every question kind without runtime type probing.
type AnswerKind string

const (
	AnswerScalar  AnswerKind = "scalar"
	AnswerList    AnswerKind = "list"
	AnswerPairMap AnswerKind = "pairmap"
)

// PairEntry is one left/right match in a matching answer. It encodes as
// a two-element array to keep entry order on the wire.
type PairEntry struct {
	Left  string
	Right string
}

func (p PairEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Left, p.Right})
}

func (p *PairEntry) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("pair entry must be a [left, right] array: %w", err)
	}
	p.Left = pair[0]
	p.Right = pair[1]
	return nil
}

// AnswerValue is the tagged union for a single learner answer:
//   - scalar: a selected option index or a free-text string
//   - list: a set of selected option indices or position-aligned gap strings
//   - pairmap: ordered left/right matches for matching questions
type AnswerValue struct {
	Kind AnswerKind

	// scalar payloads
	Number *int
	Text   *string

	// list payloads
	Numbers []int
	Strings []string

	// pairmap payload
	Entries []PairEntry
}

func OptionAnswer(index int) AnswerValue {
	return AnswerValue{Kind: AnswerScalar, Number: &index}
}

func TextAnswer(text string) AnswerValue {
	return AnswerValue{Kind: AnswerScalar, Text: &text}
}

func OptionSetAnswer(indices ...int) AnswerValue {
	return AnswerValue{Kind: AnswerList, Numbers: indices}
}

func ListAnswer(values ...string) AnswerValue {
	return AnswerValue{Kind: AnswerList, Strings: values}
}

func PairMapAnswer(entries ...PairEntry) AnswerValue {
	return AnswerValue{Kind: AnswerPairMap, Entries: entries}
}

// Equal compares two answer values structurally.
func (v AnswerValue) Equal(other AnswerValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case AnswerScalar:
		if (v.Number == nil) != (other.Number == nil) || (v.Text == nil) != (other.Text == nil) {
			return false
		}
		if v.Number != nil && *v.Number != *other.Number {
			return false
		}
		if v.Text != nil && *v.Text != *other.Text {
			return false
		}
		return true
	case AnswerList:
		if len(v.Numbers) != len(other.Numbers) || len(v.Strings) != len(other.Strings) {
			return false
		}
		for i := range v.Numbers {
			if v.Numbers[i] != other.Numbers[i] {
				return false
			}
		}
		for i := range v.Strings {
			if v.Strings[i] != other.Strings[i] {
				return false
			}
		}
		return true
	case AnswerPairMap:
		if len(v.Entries) != len(other.Entries) {
			return false
		}
		for i := range v.Entries {
			if v.Entries[i] != other.Entries[i] {
				return false
			}
		}
		return true
	}
	return false
}

type pairMapEnvelope struct {
	Kind    string      `json:"kind"`
	Entries []PairEntry `json:"entries"`
}

// MarshalJSON writes the natural JSON shape per kind: a number or
// string for scalars, an array for lists, and the explicit
// {"kind":"pairmap","entries":[...]} envelope for matching answers so
// decoding never has to guess between a gap list and a pair list.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerScalar:
		if v.Number != nil {
			return json.Marshal(*v.Number)
		}
		if v.Text != nil {
			return json.Marshal(*v.Text)
		}
		return nil, fmt.Errorf("scalar answer has no payload")
	case AnswerList:
		if v.Numbers != nil {
			return json.Marshal(v.Numbers)
		}
		if v.Strings == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.Strings)
	case AnswerPairMap:
		return json.Marshal(pairMapEnvelope{Kind: string(AnswerPairMap), Entries: v.Entries})
	}
	return nil, fmt.Errorf("unknown answer kind %q", v.Kind)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty answer value")
	}
	switch trimmed[0] {
	case '{':
		var env pairMapEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return fmt.Errorf("failed to decode pairmap answer: %w", err)
		}
		if env.Kind != string(AnswerPairMap) {
			return fmt.Errorf("unexpected answer envelope kind %q", env.Kind)
		}
		*v = AnswerValue{Kind: AnswerPairMap, Entries: env.Entries}
		return nil
	case '[':
		return v.unmarshalList(trimmed)
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*v = TextAnswer(text)
		return nil
	default:
		var number int
		if err := json.Unmarshal(trimmed, &number); err != nil {
			return fmt.Errorf("failed to decode scalar answer: %w", err)
		}
		*v = OptionAnswer(number)
		return nil
	}
}

func (v *AnswerValue) unmarshalList(data []byte) error {
	var numbers []int
	if err := json.Unmarshal(data, &numbers); err == nil && len(numbers) > 0 {
		*v = AnswerValue{Kind: AnswerList, Numbers: numbers}
		return nil
	}
	var strings []string
	if err := json.Unmarshal(data, &strings); err != nil {
		return fmt.Errorf("failed to decode list answer: %w", err)
	}
	*v = AnswerValue{Kind: AnswerList, Strings: strings}
	return nil
}

// AnswerSet holds all answers of one attempt keyed by question id,
// preserving insertion order. On the wire it is an ordered list of
// [questionId, value] pairs.
type AnswerSet struct {
	order  []string
	values map[string]AnswerValue
}

func NewAnswerSet() *AnswerSet {
	return &AnswerSet{values: make(map[string]AnswerValue)}
}

func (s *AnswerSet) Set(questionID string, value AnswerValue) {
	if s.values == nil {
		s.values = make(map[string]AnswerValue)
	}
	if _, exists := s.values[questionID]; !exists {
		s.order = append(s.order, questionID)
	}
	s.values[questionID] = value
}

func (s *AnswerSet) Get(questionID string) (AnswerValue, bool) {
	if s == nil {
		return AnswerValue{}, false
	}
	v, ok := s.values[questionID]
	return v, ok
}

func (s *AnswerSet) Delete(questionID string) {
	if s == nil {
		return
	}
	if _, ok := s.values[questionID]; !ok {
		return
	}
	delete(s.values, questionID)
	for i, id := range s.order {
		if id == questionID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *AnswerSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *AnswerSet) QuestionIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *AnswerSet) Clone() *AnswerSet {
	clone := NewAnswerSet()
	if s == nil {
		return clone
	}
	for _, id := range s.order {
		clone.Set(id, s.values[id])
	}
	return clone
}

func (s *AnswerSet) Equal(other *AnswerSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, id := range s.QuestionIDs() {
		a, _ := s.Get(id)
		b, ok := other.Get(id)
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}

func (s *AnswerSet) MarshalJSON() ([]byte, error) {
	pairs := make([][2]json.RawMessage, 0, len(s.order))
	for _, id := range s.order {
		idJSON, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		valueJSON, err := json.Marshal(s.values[id])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]json.RawMessage{idJSON, valueJSON})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON restores the collection, isolating failures per entry:
// a corrupt value for one question is dropped, the rest of the
// collection still loads.
func (s *AnswerSet) UnmarshalJSON(data []byte) error {
	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("failed to decode answer collection: %w", err)
	}
	*s = *NewAnswerSet()
	for _, raw := range pairs {
		var pair [2]json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			continue
		}
		var id string
		if err := json.Unmarshal(pair[0], &id); err != nil || id == "" {
			continue
		}
		var value AnswerValue
		if err := json.Unmarshal(pair[1], &value); err != nil {
			continue
		}
		s.Set(id, value)
	}
	return nil
}

// GapAnswerSet is the gap-answer sub-collection: per question, the
// learner strings aligned to gap positions. It lives beside the main
// answer collection so gap inputs survive partial restores on their own
// cache slot.
type GapAnswerSet struct {
	order  []string
	values map[string][]string
}

func NewGapAnswerSet() *GapAnswerSet {
	return &GapAnswerSet{values: make(map[string][]string)}
}

// SetGap records the answer for one gap position, growing the
// position-aligned slice as needed.
func (s *GapAnswerSet) SetGap(questionID string, gapIndex int, text string) {
	if gapIndex < 0 {
		return
	}
	if s.values == nil {
		s.values = make(map[string][]string)
	}
	answers, exists := s.values[questionID]
	if !exists {
		s.order = append(s.order, questionID)
	}
	for len(answers) <= gapIndex {
		answers = append(answers, "")
	}
	answers[gapIndex] = text
	s.values[questionID] = answers
}

func (s *GapAnswerSet) Get(questionID string) []string {
	if s == nil {
		return nil
	}
	return s.values[questionID]
}

func (s *GapAnswerSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *GapAnswerSet) Clone() *GapAnswerSet {
	clone := NewGapAnswerSet()
	if s == nil {
		return clone
	}
	for _, id := range s.order {
		src := s.values[id]
		for i, text := range src {
			clone.SetGap(id, i, text)
		}
	}
	return clone
}

func (s *GapAnswerSet) MarshalJSON() ([]byte, error) {
	pairs := make([][2]json.RawMessage, 0, len(s.order))
	for _, id := range s.order {
		idJSON, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		valueJSON, err := json.Marshal(s.values[id])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]json.RawMessage{idJSON, valueJSON})
	}
	return json.Marshal(pairs)
}

func (s *GapAnswerSet) UnmarshalJSON(data []byte) error {
	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("failed to decode gap answer collection: %w", err)
	}
	*s = *NewGapAnswerSet()
	for _, raw := range pairs {
		var pair [2]json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			continue
		}
		var id string
		if err := json.Unmarshal(pair[0], &id); err != nil || id == "" {
			continue
		}
		var answers []string
		if err := json.Unmarshal(pair[1], &answers); err != nil {
			continue
		}
		for i, text := range answers {
			s.SetGap(id, i, text)
		}
	}
	return nil
}
