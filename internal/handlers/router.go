package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	exportHandler  *ExportHandler
}

func NewHandlerManager(
	sessionService services.SessionService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(sessionService, validator, logger),
		exportHandler:  NewExportHandler(exportService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "quiz-engine",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(LearnerMiddleware())
	{
		steps := v1.Group("/steps/:step_id")
		{
			steps.POST("/session", hm.sessionHandler.OpenSession)
			steps.GET("/session", hm.sessionHandler.GetSession)
			steps.DELETE("/session", hm.sessionHandler.CloseSession)
			steps.GET("/session/definition", hm.sessionHandler.GetDefinition)

			steps.POST("/session/start", hm.sessionHandler.StartQuiz)
			steps.POST("/session/answers", hm.sessionHandler.RecordAnswer)
			steps.POST("/session/gap-answers", hm.sessionHandler.RecordGapAnswer)
			steps.POST("/session/submit", hm.sessionHandler.SubmitQuestion)
			steps.POST("/session/advance", hm.sessionHandler.AdvanceQuestion)
			steps.POST("/session/review", hm.sessionHandler.ReviewFeed)
			steps.POST("/session/finish", hm.sessionHandler.FinishQuiz)
			steps.POST("/session/finalize", hm.sessionHandler.FinalizeAttempt)
			steps.POST("/session/seek", hm.sessionHandler.SeekToQuestion)
			steps.POST("/session/reset", hm.sessionHandler.ResetQuiz)
			steps.GET("/session/results", hm.sessionHandler.GetResults)

			steps.GET("/results/export", hm.exportHandler.ExportStepResults)
		}
	}
}

// LearnerMiddleware resolves the learner identity from the gateway
// header. The upstream API gateway authenticates the learner; this
// service only needs the resolved ID.
func LearnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		learnerIDStr := c.GetHeader("X-Learner-ID")
		if learnerIDStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing X-Learner-ID header",
			})
			return
		}
		learnerID, err := strconv.ParseUint(learnerIDStr, 10, 32)
		if err != nil || learnerID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid X-Learner-ID header",
			})
			return
		}
		c.Set("learner_id", uint(learnerID))
		c.Next()
	}
}
