package routes

import (
	"net/http"
	"strings"

	"certprep-platform/internal/telemetry"
	"certprep-platform/models"
	"certprep-platform/services"
	"certprep-platform/utils"

	"github.com/gin-gonic/gin"
)

// HandleAnswer answers a study question, grounded on indexed content when
// retrieval finds relevant passages.
func HandleAnswer(engine *services.RetrievalEngine, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		resp, err := engine.AnswerQuery(c.Request.Context(), req.Query, strings.ToUpper(req.Certification))
		if err != nil {
			utils.RespondWithAppError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordAnswer(resp.Mode)
		}

		c.JSON(http.StatusOK, resp)
	}
}
