package routes

import (
	"fmt"
	"net/http"
	"strings"

	"certprep-platform/internal/telemetry"
	"certprep-platform/middleware"
	"certprep-platform/models"
	"certprep-platform/services"
	"certprep-platform/utils"

	"github.com/gin-gonic/gin"
)

// HandleGenerateQuiz assembles a quiz for the authenticated user.
func HandleGenerateQuiz(builder *services.QuizBuilder, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QuizRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		req.Certification = strings.ToUpper(req.Certification)

		session, err := builder.BuildQuiz(c.Request.Context(), middleware.GetUserID(c), &req)
		if err != nil {
			utils.RespondWithAppError(c, err)
			return
		}

		if metrics != nil {
			generated := 0
			for _, q := range session.Questions {
				if q.Source == models.QuizSourceGenerated {
					generated++
				}
			}
			metrics.RecordQuiz(session.Certification, generated)
		}

		c.JSON(http.StatusOK, session)
	}
}

// HandleExportQuestions streams the question bank for a certification as an
// xlsx workbook.
func HandleExportQuestions(export *services.ExportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		certification := strings.ToUpper(c.Query("certification"))

		data, count, err := export.ExportQuestionBank(c.Request.Context(), certification)
		if err != nil {
			utils.RespondWithAppError(c, err)
			return
		}

		filename := services.ExportFilename(certification)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("X-Record-Count", fmt.Sprintf("%d", count))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}
