// Package session holds the per-attempt interaction state: the bounded
// quiz state machine and the single-slot autosave debouncer.
package session

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// State is one of the five quiz interaction states. title and feed are
// entry points selected once by display mode.
type State string

const (
	StateTitle     State = "title"
	StateQuestion  State = "question"
	StateResult    State = "result"
	StateFeed      State = "feed"
	StateCompleted State = "completed"
)

// Event names a requested transition, used in error reporting.
type Event string

const (
	EventStart   Event = "start"
	EventSubmit  Event = "submit"
	EventAdvance Event = "advance"
	EventReview  Event = "review"
	EventFinish  Event = "finish"
	EventReset   Event = "reset"
	EventSeek    Event = "seek"
)

// TransitionError reports an event that is not legal from the current
// state.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s from state %s", e.Event, e.From)
}

// Machine drives one quiz attempt through its states. The furthest
// reached index is tracked separately from the current one so backward
// navigation never loses forward progress markers.
type Machine struct {
	mode      models.DisplayMode
	state     State
	current   int
	furthest  int
	count     int
	startedAt time.Time
	checked   bool

	now func() time.Time
}

// NewMachine creates a machine in the entry state for the display mode.
func NewMachine(mode models.DisplayMode, questionCount int) *Machine {
	return &Machine{
		mode:  mode,
		state: entryState(mode),
		count: questionCount,
		now:   time.Now,
	}
}

func entryState(mode models.DisplayMode) State {
	if mode == models.DisplayAllAtOnce {
		return StateFeed
	}
	return StateTitle
}

func (m *Machine) State() State                { return m.state }
func (m *Machine) Mode() models.DisplayMode    { return m.mode }
func (m *Machine) Current() int                { return m.current }
func (m *Machine) Furthest() int               { return m.furthest }
func (m *Machine) QuestionCount() int          { return m.count }
func (m *Machine) FeedChecked() bool           { return m.checked }
func (m *Machine) StartedAt() time.Time        { return m.startedAt }
func (m *Machine) Completed() bool             { return m.state == StateCompleted }

// Elapsed returns time since the recorded start, zero before start.
func (m *Machine) Elapsed() time.Duration {
	if m.startedAt.IsZero() {
		return 0
	}
	return m.now().Sub(m.startedAt)
}

// Start leaves the entry state, recording the start timestamp. In
// sequential mode title moves to the first question; in batch mode the
// feed is already showing and only the timestamp is recorded.
func (m *Machine) Start() error {
	switch m.state {
	case StateTitle:
		m.state = StateQuestion
	case StateFeed:
		// stays on the feed
	default:
		return &TransitionError{From: m.state, Event: EventStart}
	}
	if m.startedAt.IsZero() {
		m.startedAt = m.now()
	}
	return nil
}

// Submit records the answer step for the current question in sequential
// mode. Non-free-text questions move to the result screen; long_text
// skips it and goes straight to the next question, or to completed on
// the last one.
func (m *Machine) Submit(isLongText bool) error {
	if m.state != StateQuestion {
		return &TransitionError{From: m.state, Event: EventSubmit}
	}
	if !isLongText {
		m.state = StateResult
		return nil
	}
	m.advanceIndex()
	return nil
}

// Advance leaves the result screen toward the next question, or to
// completed when the current question was the last.
func (m *Machine) Advance() error {
	if m.state != StateResult {
		return &TransitionError{From: m.state, Event: EventAdvance}
	}
	m.state = StateQuestion
	m.advanceIndex()
	return nil
}

func (m *Machine) advanceIndex() {
	if m.current+1 < m.count {
		m.current++
		if m.current > m.furthest {
			m.furthest = m.current
		}
		return
	}
	m.state = StateCompleted
}

// Review marks the feed as checked without leaving it.
func (m *Machine) Review() error {
	if m.state != StateFeed {
		return &TransitionError{From: m.state, Event: EventReview}
	}
	m.checked = true
	return nil
}

// Finish completes a batch-mode quiz from the feed.
func (m *Machine) Finish() error {
	if m.state != StateFeed {
		return &TransitionError{From: m.state, Event: EventFinish}
	}
	m.state = StateCompleted
	return nil
}

// Reset re-enters the quiz from completed. Prior answers are retained
// by the caller unless explicitly cleared; the furthest marker is kept
// because the learner already reached the end once.
func (m *Machine) Reset() error {
	if m.state != StateCompleted {
		return &TransitionError{From: m.state, Event: EventReset}
	}
	m.state = entryState(m.mode)
	m.current = 0
	m.checked = false
	return nil
}

// SeekTo navigates to an already-reached question for review. The
// current index never moves past the furthest reached one this way.
func (m *Machine) SeekTo(index int) error {
	if m.state != StateQuestion && m.state != StateResult {
		return &TransitionError{From: m.state, Event: EventSeek}
	}
	if index < 0 || index > m.furthest {
		return &TransitionError{From: m.state, Event: EventSeek}
	}
	m.current = index
	m.state = StateQuestion
	return nil
}

// RestoreDraft resumes a server-side draft: into the question state at
// the saved index in sequential mode, or the feed in batch mode, with
// the start timestamp back-dated so elapsed time continues from the
// saved value.
func (m *Machine) RestoreDraft(index int, startedAt time.Time) {
	if index < 0 {
		index = 0
	}
	if m.count > 0 && index >= m.count {
		index = m.count - 1
	}
	m.current = index
	m.furthest = index
	m.startedAt = startedAt
	if m.mode == models.DisplayAllAtOnce {
		m.state = StateFeed
		return
	}
	m.state = StateQuestion
}

// RestoreCompleted resumes a finalized attempt on the completion state.
func (m *Machine) RestoreCompleted() {
	m.state = StateCompleted
	if m.count > 0 {
		m.current = m.count - 1
		m.furthest = m.count - 1
	}
}
