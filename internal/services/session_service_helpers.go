package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/quiz-engine/internal/events"
	"github.com/SAP-F-2025/quiz-engine/internal/grading"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/SAP-F-2025/quiz-engine/internal/session"
)

// restoreSession reconciles server and local state into a fresh session.
// Precedence: a server attempt with a matching content hash wins; a hash
// mismatch invalidates everything; the local cache is consulted only
// when the server returned no attempt at all.
func (s *sessionService) restoreSession(
	ctx context.Context,
	step *models.LessonStep,
	def *models.QuizDefinition,
	hash string,
	learnerID uint,
) *QuizSession {
	sess := &QuizSession{
		svc:        s,
		step:       step,
		def:        def,
		hash:       hash,
		learnerID:  learnerID,
		debounce:   session.NewDebouncer(s.autosaveDelay),
		machine:    session.NewMachine(def.EntryDisplayMode(), len(def.Questions)),
		answers:    models.NewAnswerSet(),
		gapAnswers: models.NewGapAnswerSet(),
	}

	attempts, err := s.repo.Attempt().ListByStep(ctx, step.ID, learnerID)
	if err != nil {
		s.logger.Warn("Failed to list attempts, falling back to local cache",
			"step_id", step.ID, "learner_id", learnerID, "error", err)
		attempts = nil
	}

	if len(attempts) == 0 {
		s.restoreFromCache(ctx, sess)
		return sess
	}

	// A server attempt was loaded; the local cache is no longer
	// authoritative regardless of what the attempt contains.
	if err := s.cache.Clear(ctx, step.ID); err != nil {
		s.logger.Warn("Failed to clear answer cache", "step_id", step.ID, "error", err)
	}

	attempt := attempts[0]
	if attempt.QuizContentHash != hash {
		s.logger.Info("Quiz content changed since last attempt, starting fresh",
			"step_id", step.ID,
			"attempt_id", attempt.ID,
			"stored_hash", attempt.QuizContentHash,
			"current_hash", hash)
		return sess
	}

	sess.attemptID = attempt.ID
	sess.answers = attempt.DecodeAnswers()
	sess.gapAnswers = attempt.DecodeGapAnswers()

	if attempt.IsDraft {
		startedAt := s.now().Add(-time.Duration(attempt.TimeSpentSeconds) * time.Second)
		sess.machine.RestoreDraft(attempt.CurrentQuestionIndex, startedAt)
		s.logger.Info("Resuming draft attempt",
			"step_id", step.ID,
			"attempt_id", attempt.ID,
			"question_index", attempt.CurrentQuestionIndex)
		return sess
	}

	sess.machine.RestoreCompleted()
	sess.finalized = true
	sess.passed = attempt.Passed()
	sess.scorePct = attempt.ScorePercentage
	sess.correct = attempt.CorrectAnswers
	sess.total = attempt.TotalQuestions
	sess.manual = !attempt.IsGraded
	return sess
}

func (s *sessionService) restoreFromCache(ctx context.Context, sess *QuizSession) {
	answers, err := s.cache.GetAnswers(ctx, sess.step.ID)
	if err != nil {
		s.logger.Warn("Failed to read answer cache", "step_id", sess.step.ID, "error", err)
	} else if answers != nil {
		sess.answers = answers
	}

	gapAnswers, err := s.cache.GetGapAnswers(ctx, sess.step.ID)
	if err != nil {
		s.logger.Warn("Failed to read gap answer cache", "step_id", sess.step.ID, "error", err)
	} else if gapAnswers != nil {
		sess.gapAnswers = gapAnswers
	}
}

// answerShapeFits checks that the answer value's shape is one the
// question type can be scored against.
func answerShapeFits(q *models.Question, value models.AnswerValue) bool {
	switch q.Type {
	case models.SingleChoice, models.MediaQuestion:
		return value.Kind == models.AnswerScalar && value.Number != nil
	case models.MultipleChoice:
		return value.Kind == models.AnswerList
	case models.ShortAnswer, models.LongText, models.MediaOpenQuestion:
		return value.Kind == models.AnswerScalar && value.Text != nil
	case models.FillBlank, models.TextCompletion:
		// Gap text may also arrive through the gap sub-collection; a
		// list here is the batched form.
		return value.Kind == models.AnswerList
	case models.Matching:
		// Either the pair envelope or an option-order permutation.
		return value.Kind == models.AnswerPairMap || value.Kind == models.AnswerList
	default:
		// image_content and unknown types take no answer
		return false
	}
}

// ===== LOCAL CACHE + AUTOSAVE =====

// syncLocalCache writes both collections to the per-step cache. Writes
// are synchronous so a crash right after an answer loses nothing
// locally; failures are logged and swallowed because the cache is only
// a hint.
func (q *QuizSession) syncLocalCache(ctx context.Context) {
	q.mu.Lock()
	answers := q.answers.Clone()
	gapAnswers := q.gapAnswers.Clone()
	stepID := q.step.ID
	q.mu.Unlock()

	if err := q.svc.cache.PutAnswers(ctx, stepID, answers); err != nil {
		q.svc.logger.Warn("Failed to cache answers", "step_id", stepID, "error", err)
	}
	if err := q.svc.cache.PutGapAnswers(ctx, stepID, gapAnswers); err != nil {
		q.svc.logger.Warn("Failed to cache gap answers", "step_id", stepID, "error", err)
	}
}

// scheduleAutosave is safe with or without q.mu held; the debouncer
// fires on its own goroutine later.
func (q *QuizSession) scheduleAutosave() {
	q.debounce.Schedule(q.autosave)
}

// autosave persists the draft attempt. It reads the session state at
// send time, so a burst of edits collapses into one write carrying the
// latest answers. Errors are logged and swallowed; the synchronous
// cache writes already hold the learner's progress.
func (q *QuizSession) autosave() {
	ctx := context.Background()

	q.mu.Lock()
	if q.closed || q.finalized {
		q.mu.Unlock()
		return
	}
	attempt := q.buildAttemptLocked()
	attemptID := q.attemptID
	q.mu.Unlock()

	var err error
	if attemptID == 0 {
		err = q.svc.repo.Attempt().Create(ctx, attempt)
		if err == nil {
			q.mu.Lock()
			if q.attemptID == 0 {
				q.attemptID = attempt.ID
			}
			q.mu.Unlock()
		}
	} else {
		attempt.ID = attemptID
		err = q.svc.repo.Attempt().Update(ctx, attempt)
	}

	if err != nil {
		q.svc.logger.Warn("Draft autosave failed, local cache retains progress",
			"step_id", q.step.ID, "learner_id", q.learnerID, "error", err)
		return
	}
	q.svc.logger.Debug("Draft autosaved",
		"step_id", q.step.ID, "attempt_id", attempt.ID,
		"question_index", attempt.CurrentQuestionIndex)
}

// buildAttemptLocked snapshots the session into a draft attempt row.
// Caller holds q.mu.
func (q *QuizSession) buildAttemptLocked() *models.QuizAttempt {
	answersJSON, err := q.answers.MarshalJSON()
	if err != nil {
		answersJSON = []byte("[]")
	}
	gapJSON, err := q.gapAnswers.MarshalJSON()
	if err != nil {
		gapJSON = []byte("[]")
	}
	return &models.QuizAttempt{
		StepID:               q.step.ID,
		CourseID:             q.step.CourseID,
		LessonID:             q.step.LessonID,
		LearnerID:            q.learnerID,
		Answers:              datatypes.JSON(answersJSON),
		GapAnswers:           datatypes.JSON(gapJSON),
		CurrentQuestionIndex: q.machine.Current(),
		TimeSpentSeconds:     int(q.machine.Elapsed().Seconds()),
		IsDraft:              true,
		QuizContentHash:      q.hash,
	}
}

// ===== FINALIZATION =====

// finalizeLocked scores the attempt and persists it. Ordering matters:
// score, persist, then clear the local cache, so a crash between the
// last two leaves a finalized server row plus stale cache, which the
// next load discards anyway. A persist failure keeps the cache and
// leaves the session retryable via Finalize. Caller holds q.mu.
func (q *QuizSession) finalizeLocked(ctx context.Context) error {
	q.debounce.Cancel()

	summary := grading.Score(q.def.Questions, q.answers, q.gapAnswers)

	attempt := q.buildAttemptLocked()
	attempt.IsDraft = false
	attempt.IsGraded = !summary.NeedsManualReview
	attempt.ScorePercentage = summary.Percentage()
	attempt.TotalQuestions = summary.Total
	attempt.CorrectAnswers = summary.Score

	var err error
	if q.attemptID == 0 {
		err = q.svc.repo.Attempt().Create(ctx, attempt)
	} else {
		attempt.ID = q.attemptID
		err = q.svc.repo.Attempt().Update(ctx, attempt)
	}
	if err != nil {
		q.svc.logger.Error("Failed to persist finalized attempt",
			"step_id", q.step.ID, "learner_id", q.learnerID, "error", err)
		return fmt.Errorf("%w: %v", ErrFinalizeFailed, err)
	}

	q.attemptID = attempt.ID
	q.finalized = true
	q.summary = &summary
	q.passed = summary.Passed()
	q.scorePct = summary.Percentage()
	q.correct = summary.Score
	q.total = summary.Total
	q.manual = summary.NeedsManualReview

	if err := q.svc.cache.Clear(ctx, q.step.ID); err != nil {
		q.svc.logger.Warn("Failed to clear answer cache after finalize",
			"step_id", q.step.ID, "error", err)
	}

	q.svc.logger.Info("Attempt finalized",
		"step_id", q.step.ID,
		"attempt_id", attempt.ID,
		"score", summary.Score,
		"total", summary.Total,
		"passed", q.passed,
		"needs_manual_review", summary.NeedsManualReview)

	q.publishFinalizedLocked(ctx, attempt, summary)
	return nil
}

func (q *QuizSession) publishFinalizedLocked(ctx context.Context, attempt *models.QuizAttempt, summary grading.ScoreSummary) {
	q.svc.publishEvent(ctx, events.NewQuizEvent(events.EventAttemptFinalized, events.AttemptFinalizedEvent{
		AttemptID:        attempt.ID,
		StepID:           q.step.ID,
		LearnerID:        q.learnerID,
		ScorePercentage:  attempt.ScorePercentage,
		CorrectAnswers:   attempt.CorrectAnswers,
		TotalQuestions:   attempt.TotalQuestions,
		Passed:           q.passed,
		IsGraded:         attempt.IsGraded,
		TimeSpentSeconds: attempt.TimeSpentSeconds,
	}))

	if !summary.NeedsManualReview {
		return
	}
	var questionIDs []string
	for _, result := range summary.Results {
		if result.NeedsManual {
			questionIDs = append(questionIDs, result.QuestionID)
		}
	}
	q.svc.publishEvent(ctx, events.NewQuizEvent(events.EventManualGradingRequired, events.ManualGradingRequiredEvent{
		AttemptID:   attempt.ID,
		StepID:      q.step.ID,
		LearnerID:   q.learnerID,
		QuestionIDs: questionIDs,
	}))
}

// Results returns the per-question grading results of a finalized
// attempt, nil before finalization.
func (q *QuizSession) Results() []grading.QuestionResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.summary == nil {
		return nil
	}
	return q.summary.Results
}
