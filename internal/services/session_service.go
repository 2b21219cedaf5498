package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-engine/internal/cache"
	"github.com/SAP-F-2025/quiz-engine/internal/events"
	"github.com/SAP-F-2025/quiz-engine/internal/grading"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/repositories"
	"github.com/SAP-F-2025/quiz-engine/internal/session"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
)

// SessionService reconciles quiz progress between the server-side
// attempt store and the per-step local answer cache, and owns the
// active sessions. The server is authoritative; the cache is a
// resumability hint consulted only when the server has nothing usable.
type SessionService interface {
	// Open loads or initializes the quiz session for a step: server
	// attempt first, local cache fallback, hard invalidation when the
	// definition hash no longer matches.
	Open(ctx context.Context, stepID, learnerID uint) (*QuizSession, error)

	// Get returns an already-open session.
	Get(stepID, learnerID uint) (*QuizSession, bool)

	// Close tears a session down. A pending autosave timer is cancelled;
	// with flush set, the pending save runs immediately instead so the
	// final state is not lost.
	Close(ctx context.Context, stepID, learnerID uint, flush bool) error
}

type sessionKey struct {
	stepID    uint
	learnerID uint
}

type sessionService struct {
	repo      repositories.Repository
	cache     cache.AnswerCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator

	autosaveDelay time.Duration
	now           func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*QuizSession
}

// Option tunes the session service; defaults fit production.
type Option func(*sessionService)

// WithAutosaveDelay overrides the draft autosave debounce delay.
func WithAutosaveDelay(d time.Duration) Option {
	return func(s *sessionService) { s.autosaveDelay = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *sessionService) { s.now = now }
}

func NewSessionService(
	repo repositories.Repository,
	answerCache cache.AnswerCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
	opts ...Option,
) SessionService {
	s := &sessionService{
		repo:          repo,
		cache:         answerCache,
		publisher:     publisher,
		logger:        logger,
		validator:     validator,
		autosaveDelay: session.AutosaveDelay,
		now:           time.Now,
		sessions:      make(map[sessionKey]*QuizSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) Open(ctx context.Context, stepID, learnerID uint) (*QuizSession, error) {
	key := sessionKey{stepID: stepID, learnerID: learnerID}

	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	s.logger.Info("Opening quiz session", "step_id", stepID, "learner_id", learnerID)

	step, err := s.repo.Step().GetByID(ctx, stepID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to get lesson step: %w", err)
	}

	if strings.TrimSpace(step.ContentText) == "" {
		return nil, ErrStepNotQuiz
	}

	def, err := models.ParseQuizDefinition([]byte(step.ContentText))
	if err != nil {
		return nil, wrapf(ErrDefinitionInvalid, "step %d", stepID)
	}
	if err := grading.ValidateDefinition(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefinitionInvalid, err)
	}

	hash := utils.QuizContentHash([]byte(step.ContentText))

	sess := s.restoreSession(ctx, step, def, hash, learnerID)

	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok {
		// Lost the race; the earlier session stays the active one.
		s.mu.Unlock()
		sess.debounce.Cancel()
		return existing, nil
	}
	s.sessions[key] = sess
	s.mu.Unlock()

	s.logger.Info("Quiz session opened",
		"step_id", stepID,
		"learner_id", learnerID,
		"state", sess.machine.State(),
		"restored_answers", sess.answers.Len())

	return sess, nil
}

func (s *sessionService) Get(stepID, learnerID uint) (*QuizSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionKey{stepID: stepID, learnerID: learnerID}]
	return sess, ok
}

func (s *sessionService) Close(ctx context.Context, stepID, learnerID uint, flush bool) error {
	key := sessionKey{stepID: stepID, learnerID: learnerID}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	// Run or drop the pending save before marking the session closed;
	// an in-flight save is never interrupted.
	if flush {
		sess.debounce.Flush()
	} else {
		sess.debounce.Cancel()
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()

	s.logger.Info("Quiz session closed", "step_id", stepID, "learner_id", learnerID, "flushed", flush)
	return nil
}

func (s *sessionService) publishEvent(ctx context.Context, event *events.QuizEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish quiz event", "event_type", event.Type, "error", err)
	}
}

// ===== REQUEST / RESPONSE TYPES =====

type RecordAnswerRequest struct {
	QuestionID string             `json:"question_id" validate:"required"`
	Value      models.AnswerValue `json:"value"`
}

type RecordGapAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	GapIndex   int    `json:"gap_index" validate:"min=0"`
	Text       string `json:"text"`
}

// SessionState is a read-only snapshot of a session for the transport
// layer.
type SessionState struct {
	StepID    uint `json:"step_id"`
	LearnerID uint `json:"learner_id"`

	State         session.State      `json:"state"`
	DisplayMode   models.DisplayMode `json:"display_mode"`
	CurrentIndex  int                `json:"current_question_index"`
	FurthestIndex int                `json:"furthest_question_index"`
	QuestionCount int                `json:"question_count"`
	FeedChecked   bool               `json:"feed_checked"`

	AttemptID        uint `json:"attempt_id,omitempty"`
	AnsweredCount    int  `json:"answered_count"`
	TimeSpentSeconds int  `json:"time_spent_seconds"`

	Finalized             bool    `json:"finalized"`
	Passed                bool    `json:"passed"`
	ScorePercentage       float64 `json:"score_percentage"`
	CorrectAnswers        int     `json:"correct_answers"`
	TotalQuestions        int     `json:"total_questions"`
	RequiresManualGrading bool    `json:"requires_manual_grading"`
}

// ===== QUIZ SESSION =====

// QuizSession is one learner's live interaction with one step's quiz.
// All mutating calls are serialized by its mutex; the autosave timer
// reads the latest state at send time, never a stale snapshot.
type QuizSession struct {
	svc       *sessionService
	step      *models.LessonStep
	def       *models.QuizDefinition
	hash      string
	learnerID uint

	debounce *session.Debouncer

	mu         sync.Mutex
	machine    *session.Machine
	answers    *models.AnswerSet
	gapAnswers *models.GapAnswerSet
	attemptID  uint
	finalized  bool
	summary    *grading.ScoreSummary
	passed     bool
	scorePct   float64
	correct    int
	total      int
	manual     bool
	closed     bool
}

// Definition exposes the quiz definition the session runs against.
func (q *QuizSession) Definition() *models.QuizDefinition {
	return q.def
}

// State snapshots the session.
func (q *QuizSession) State() SessionState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return SessionState{
		StepID:                q.step.ID,
		LearnerID:             q.learnerID,
		State:                 q.machine.State(),
		DisplayMode:           q.machine.Mode(),
		CurrentIndex:          q.machine.Current(),
		FurthestIndex:         q.machine.Furthest(),
		QuestionCount:         q.machine.QuestionCount(),
		FeedChecked:           q.machine.FeedChecked(),
		AttemptID:             q.attemptID,
		AnsweredCount:         q.answers.Len(),
		TimeSpentSeconds:      int(q.machine.Elapsed().Seconds()),
		Finalized:             q.finalized,
		Passed:                q.passed,
		ScorePercentage:       q.scorePct,
		CorrectAnswers:        q.correct,
		TotalQuestions:        q.total,
		RequiresManualGrading: q.manual,
	}
}

// Start leaves the entry screen and records the start timestamp.
func (q *QuizSession) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrSessionClosed
	}
	if err := q.machine.Start(); err != nil {
		q.mu.Unlock()
		return err
	}
	q.mu.Unlock()

	q.svc.publishEvent(ctx, events.NewQuizEvent(events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptID:     q.attemptID,
		StepID:        q.step.ID,
		LearnerID:     q.learnerID,
		DisplayMode:   q.def.EntryDisplayMode(),
		QuestionCount: len(q.def.Questions),
	}))
	return nil
}

// RecordAnswer stores one learner answer: synchronously into the local
// cache, and onto the debounced draft autosave.
func (q *QuizSession) RecordAnswer(ctx context.Context, req *RecordAnswerRequest) error {
	if err := q.svc.validator.Validate(req); err != nil {
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrSessionClosed
	}
	if state := q.machine.State(); state != session.StateQuestion && state != session.StateFeed {
		q.mu.Unlock()
		return wrapf(ErrSessionNotActive, "state %s", state)
	}
	question, ok := q.def.QuestionByID(req.QuestionID)
	if !ok {
		q.mu.Unlock()
		return wrapf(ErrQuestionNotFound, "question %s", req.QuestionID)
	}
	if !answerShapeFits(question, req.Value) {
		q.mu.Unlock()
		return wrapf(ErrAnswerShapeMismatch, "question %s (%s) vs answer kind %s",
			question.ID, question.Type, req.Value.Kind)
	}
	q.answers.Set(req.QuestionID, req.Value)
	q.mu.Unlock()

	q.syncLocalCache(ctx)
	q.scheduleAutosave()
	return nil
}

// RecordGapAnswer stores the learner's text for one gap position.
func (q *QuizSession) RecordGapAnswer(ctx context.Context, req *RecordGapAnswerRequest) error {
	if err := q.svc.validator.Validate(req); err != nil {
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrSessionClosed
	}
	if state := q.machine.State(); state != session.StateQuestion && state != session.StateFeed {
		q.mu.Unlock()
		return wrapf(ErrSessionNotActive, "state %s", state)
	}
	question, ok := q.def.QuestionByID(req.QuestionID)
	if !ok {
		q.mu.Unlock()
		return wrapf(ErrQuestionNotFound, "question %s", req.QuestionID)
	}
	if !question.IsGapType() {
		q.mu.Unlock()
		return wrapf(ErrAnswerShapeMismatch, "question %s is %s, not a gap type", question.ID, question.Type)
	}
	if req.GapIndex >= grading.CountGaps(question.ContentText) {
		q.mu.Unlock()
		return wrapf(ErrGapIndexOutOfRange, "gap %d of question %s", req.GapIndex, question.ID)
	}
	q.gapAnswers.SetGap(req.QuestionID, req.GapIndex, req.Text)
	q.mu.Unlock()

	q.syncLocalCache(ctx)
	q.scheduleAutosave()
	return nil
}

// SeekTo moves back to an already-reached question for review.
func (q *QuizSession) SeekTo(index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.machine.SeekTo(index)
}

// Submit records the answer step for the current question in sequential
// mode. When the machine reaches the completed state (a long_text
// submit on the last question) the attempt is finalized.
func (q *QuizSession) Submit(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrSessionClosed
	}

	index := q.machine.Current()
	if index >= len(q.def.Questions) {
		return wrapf(ErrQuestionNotFound, "index %d", index)
	}
	isLongText := q.def.Questions[index].Type == models.LongText

	if err := q.machine.Submit(isLongText); err != nil {
		return err
	}
	q.scheduleAutosave()
	if q.machine.Completed() {
		return q.finalizeLocked(ctx)
	}
	return nil
}

// Advance leaves the result screen; completing the last question
// finalizes the attempt.
func (q *QuizSession) Advance(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrSessionClosed
	}
	if err := q.machine.Advance(); err != nil {
		return err
	}
	q.scheduleAutosave()
	if q.machine.Completed() {
		return q.finalizeLocked(ctx)
	}
	return nil
}

// Review marks the batch-mode feed as checked.
func (q *QuizSession) Review() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.machine.Review()
}

// Finish completes a batch-mode quiz and finalizes the attempt.
func (q *QuizSession) Finish(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrSessionClosed
	}
	if err := q.machine.Finish(); err != nil {
		return err
	}
	return q.finalizeLocked(ctx)
}

// Finalize retries persisting a completed attempt after an earlier
// finalize failed. Idempotent once persisted.
func (q *QuizSession) Finalize(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.machine.Completed() {
		return ErrNothingToFinalize
	}
	if q.finalized {
		return nil
	}
	return q.finalizeLocked(ctx)
}

// Reset re-enters the quiz from the completion screen. Prior answers
// are retained for edit-and-resubmit unless clearAnswers is set.
func (q *QuizSession) Reset(ctx context.Context, clearAnswers bool) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrSessionClosed
	}
	if err := q.machine.Reset(); err != nil {
		q.mu.Unlock()
		return err
	}
	q.finalized = false
	q.summary = nil
	q.passed = false
	q.scorePct = 0
	q.correct = 0
	q.total = 0
	q.manual = false
	if clearAnswers {
		q.answers = models.NewAnswerSet()
		q.gapAnswers = models.NewGapAnswerSet()
	}
	stepID := q.step.ID
	q.mu.Unlock()

	if clearAnswers {
		if err := q.svc.cache.Clear(ctx, stepID); err != nil {
			q.svc.logger.Warn("Failed to clear answer cache on reset", "step_id", stepID, "error", err)
		}
	}
	return nil
}
