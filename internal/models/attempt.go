package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PassPercentage is the completion threshold gating forward lesson-step
// progression. Hard constant, not configurable per quiz.
const PassPercentage = 50.0

// LessonStep owns a quiz definition. ContentText carries the serialized
// QuizDefinition JSON exactly as authored; the content hash is computed
// over these bytes, so they must stay byte-stable.
type LessonStep struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	CourseID    uint   `json:"course_id" gorm:"not null;index"`
	LessonID    uint   `json:"lesson_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"size:200"`
	ContentText string `json:"content_text" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LessonStep) TableName() string {
	return "lesson_steps"
}

// QuizAttempt is one learner's progress through a step's quiz. It is
// created as a draft on the first autosave, updated in place while the
// learner works, and finalized with a score on completion. A learner
// holds at most one current attempt per step; starting over overwrites
// score and answers rather than appending a row.
type QuizAttempt struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StepID    uint `json:"step_id" gorm:"not null;index:idx_attempt_step_learner"`
	CourseID  uint `json:"course_id"`
	LessonID  uint `json:"lesson_id"`
	LearnerID uint `json:"learner_id" gorm:"not null;index:idx_attempt_step_learner"`

	// Answers holds the ordered [questionId, value] pair encoding of
	// AnswerSet; GapAnswers holds the gap sub-collection.
	Answers    datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	GapAnswers datatypes.JSON `json:"gap_answers" gorm:"type:jsonb"`

	CurrentQuestionIndex int  `json:"current_question_index"`
	TimeSpentSeconds     int  `json:"time_spent_seconds"`
	IsDraft              bool `json:"is_draft" gorm:"default:true;index"`
	IsGraded             bool `json:"is_graded"`

	ScorePercentage float64 `json:"score_percentage"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`

	// QuizContentHash fingerprints the definition the answers were given
	// against; a mismatch at load time invalidates the attempt.
	QuizContentHash string `json:"quiz_content_hash" gorm:"size:64"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// Passed reports whether a finalized attempt met the pass threshold.
func (a *QuizAttempt) Passed() bool {
	return !a.IsDraft && a.ScorePercentage >= PassPercentage
}

// DecodeAnswers restores the answer collection from the stored blob.
// Decoding is tolerant per entry; a fully corrupt blob yields an empty
// collection rather than an error.
func (a *QuizAttempt) DecodeAnswers() *AnswerSet {
	set := NewAnswerSet()
	if len(a.Answers) == 0 {
		return set
	}
	if err := set.UnmarshalJSON(a.Answers); err != nil {
		return NewAnswerSet()
	}
	return set
}

// DecodeGapAnswers restores the gap sub-collection from the stored blob.
func (a *QuizAttempt) DecodeGapAnswers() *GapAnswerSet {
	set := NewGapAnswerSet()
	if len(a.GapAnswers) == 0 {
		return set
	}
	if err := set.UnmarshalJSON(a.GapAnswers); err != nil {
		return NewGapAnswerSet()
	}
	return set
}
