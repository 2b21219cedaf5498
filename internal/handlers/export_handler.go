package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-engine/internal/services"
	"github.com/SAP-F-2025/quiz-engine/internal/utils"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportStepResults downloads a result sheet for all attempts on a step
// @Summary Export step results
// @Description Exports attempt results for a step as xlsx or csv
// @Tags exports
// @Produce application/octet-stream
// @Param step_id path uint true "Lesson step ID"
// @Param format query string false "xlsx or csv" default(xlsx)
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /steps/{step_id}/results/export [get]
func (h *ExportHandler) ExportStepResults(c *gin.Context) {
	stepIDStr := c.Param("step_id")
	stepID, err := strconv.ParseUint(stepIDStr, 10, 32)
	if err != nil || stepID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid step_id",
		})
		return
	}

	format := c.DefaultQuery("format", "xlsx")

	h.LogRequest(c, "Exporting step results", "step_id", stepID, "format", format)

	var data []byte
	var contentType, filename string

	switch format {
	case "xlsx":
		data, err = h.exportService.ExportStepResultsToExcel(c.Request.Context(), uint(stepID))
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = fmt.Sprintf("step-%d-results.xlsx", stepID)
	case "csv":
		data, err = h.exportService.ExportStepResultsToCSV(c.Request.Context(), uint(stepID))
		contentType = "text/csv"
		filename = fmt.Sprintf("step-%d-results.csv", stepID)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
		return
	}

	if err != nil {
		if errors.Is(err, services.ErrStepNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
			return
		}
		h.LogError(c, err, "Failed to export step results", "step_id", stepID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to export results",
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
