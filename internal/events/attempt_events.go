package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// EventType represents different types of quiz attempt events
type EventType string

const (
	// Attempt lifecycle events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptFinalized EventType = "attempt.finalized"

	// Grading events
	EventManualGradingRequired EventType = "grading.manual_required"
)

// QuizEvent is the base event structure for all quiz attempt events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewQuizEvent builds an event envelope with the module's source tag.
func NewQuizEvent(eventType EventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "quiz-engine",
		Version:   "1.0",
		Data:      data,
	}
}

// Attempt event payloads

type AttemptStartedEvent struct {
	AttemptID     uint               `json:"attempt_id,omitempty"`
	StepID        uint               `json:"step_id"`
	LearnerID     uint               `json:"learner_id"`
	DisplayMode   models.DisplayMode `json:"display_mode"`
	QuestionCount int                `json:"question_count"`
}

type AttemptFinalizedEvent struct {
	AttemptID        uint    `json:"attempt_id"`
	StepID           uint    `json:"step_id"`
	LearnerID        uint    `json:"learner_id"`
	ScorePercentage  float64 `json:"score_percentage"`
	CorrectAnswers   int     `json:"correct_answers"`
	TotalQuestions   int     `json:"total_questions"`
	Passed           bool    `json:"passed"`
	IsGraded         bool    `json:"is_graded"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

type ManualGradingRequiredEvent struct {
	AttemptID   uint     `json:"attempt_id"`
	StepID      uint     `json:"step_id"`
	LearnerID   uint     `json:"learner_id"`
	QuestionIDs []string `json:"question_ids"`
}
