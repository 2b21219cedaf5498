package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/session"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *utils.Validator
}

type SeekRequest struct {
	Index int `json:"index" validate:"min=0"`
}

type ResetRequest struct {
	ClearAnswers bool `json:"clear_answers"`
}

func NewSessionHandler(
	sessionService services.SessionService,
	validator *utils.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// OpenSession loads or initializes the quiz session for a lesson step
// @Summary Open quiz session
// @Description Opens a session for a step, restoring any saved draft or finalized attempt
// @Tags sessions
// @Produce json
// @Param step_id path uint true "Lesson step ID"
// @Success 200 {object} services.SessionState
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /steps/{step_id}/session [post]
func (h *SessionHandler) OpenSession(c *gin.Context) {
	stepID := h.parseIDParam(c, "step_id")
	if stepID == 0 {
		return
	}
	learnerID, ok := h.learnerID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Opening quiz session", "step_id", stepID, "learner_id", learnerID)

	sess, err := h.sessionService.Open(c.Request.Context(), stepID, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess.State())
}

// GetSession returns the current state of an open session
// @Router /steps/{step_id}/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// GetDefinition returns the quiz definition the session runs against
// @Router /steps/{step_id}/session/definition [get]
func (h *SessionHandler) GetDefinition(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Definition())
}

// CloseSession tears the session down
// @Router /steps/{step_id}/session [delete]
func (h *SessionHandler) CloseSession(c *gin.Context) {
	stepID := h.parseIDParam(c, "step_id")
	if stepID == 0 {
		return
	}
	learnerID, ok := h.learnerID(c)
	if !ok {
		return
	}

	flush := c.DefaultQuery("flush", "true") != "false"

	if err := h.sessionService.Close(c.Request.Context(), stepID, learnerID, flush); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Session closed"})
}

// StartQuiz leaves the title or feed entry screen
// @Router /steps/{step_id}/session/start [post]
func (h *SessionHandler) StartQuiz(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Start(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// RecordAnswer stores a learner answer for one question
// @Summary Record answer
// @Description Stores an answer; the draft attempt is autosaved after a short debounce
// @Tags sessions
// @Accept json
// @Produce json
// @Param step_id path uint true "Lesson step ID"
// @Param answer body services.RecordAnswerRequest true "Answer data"
// @Success 200 {object} services.SessionState
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /steps/{step_id}/session/answers [post]
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req services.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := sess.RecordAnswer(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess.State())
}

// RecordGapAnswer stores the text for one gap of a gap-type question
// @Router /steps/{step_id}/session/gap-answers [post]
func (h *SessionHandler) RecordGapAnswer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req services.RecordGapAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := sess.RecordGapAnswer(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess.State())
}

// SubmitQuestion submits the current question in sequential mode
// @Router /steps/{step_id}/session/submit [post]
func (h *SessionHandler) SubmitQuestion(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Submit(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// AdvanceQuestion leaves the per-question result screen
// @Router /steps/{step_id}/session/advance [post]
func (h *SessionHandler) AdvanceQuestion(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Advance(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// ReviewFeed marks the batch-mode feed as checked
// @Router /steps/{step_id}/session/review [post]
func (h *SessionHandler) ReviewFeed(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Review(); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// FinishQuiz completes a batch-mode quiz and finalizes the attempt
// @Router /steps/{step_id}/session/finish [post]
func (h *SessionHandler) FinishQuiz(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Finish(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// FinalizeAttempt retries persisting a completed attempt
// @Router /steps/{step_id}/session/finalize [post]
func (h *SessionHandler) FinalizeAttempt(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Finalize(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// SeekToQuestion navigates back to an already-reached question
// @Router /steps/{step_id}/session/seek [post]
func (h *SessionHandler) SeekToQuestion(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	if err := sess.SeekTo(req.Index); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// ResetQuiz re-enters the quiz from the completion screen
// @Router /steps/{step_id}/session/reset [post]
func (h *SessionHandler) ResetQuiz(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req ResetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	if err := sess.Reset(c.Request.Context(), req.ClearAnswers); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// GetResults returns per-question grading results of a finalized attempt
// @Router /steps/{step_id}/session/results [get]
func (h *SessionHandler) GetResults(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	results := sess.Results()
	if results == nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Attempt is not finalized",
		})
		return
	}
	c.JSON(http.StatusOK, results)
}

// ===== HELPERS =====

// session resolves the open session for the step and learner of the
// request, writing the error response itself on failure.
func (h *SessionHandler) session(c *gin.Context) (*services.QuizSession, bool) {
	stepID := h.parseIDParam(c, "step_id")
	if stepID == 0 {
		return nil, false
	}
	learnerID, ok := h.learnerID(c)
	if !ok {
		return nil, false
	}
	sess, ok := h.sessionService.Get(stepID, learnerID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No active session for step",
		})
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) learnerID(c *gin.Context) (uint, bool) {
	learnerID, exists := c.Get("learner_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Learner not authenticated",
		})
		return 0, false
	}
	return learnerID.(uint), true
}

func (h *SessionHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
		})
		return 0
	}
	return uint(id)
}

func (h *SessionHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var transitionErr *session.TransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Invalid quiz state transition",
			Details: transitionErr.Error(),
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrSessionClosed):
		c.JSON(http.StatusGone, ErrorResponse{Message: err.Error()})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
