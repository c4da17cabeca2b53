package analyses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/auth"
	"github.com/speakwise/speech-api/api/types"
)

// List returns the caller's analyses, newest first
// @Summary List analyses
// @Description Returns every analysis result belonging to the caller, newest first
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Success 200 {array} types.AnalysisResponse
// @Router /api/v1/analyses [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := auth.UserID(c)

		results, err := deps.AnalysisService.ListByOwner(c.Request.Context(), ownerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list analyses"})
			return
		}

		responses := make([]types.AnalysisResponse, 0, len(results))
		for i := range results {
			uuid := videoUUIDFor(c, deps, results[i].VideoID)
			responses = append(responses, *types.ToAnalysisResponse(&results[i], uuid))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// videoUUIDFor resolves the public id of the video a result belongs to
func videoUUIDFor(c *gin.Context, deps *types.Dependencies, videoID uint) string {
	video, err := deps.VideoService.GetByID(c.Request.Context(), videoID)
	if err != nil {
		return ""
	}
	return video.UUID
}
