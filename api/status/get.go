package status

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/auth"
	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/internal/services/videos"
)

// Get returns the lifecycle status of one of the caller's videos
// @Summary Poll video status
// @Description Returns the current pipeline status and, once analyzed, the analysis result inline
// @Tags status
// @Security BearerAuth
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} types.StatusResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/status/{videoId} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		videoID := c.Param("videoId")
		ownerID := auth.UserID(c)

		video, err := deps.VideoService.GetForOwner(c.Request.Context(), videoID, ownerID)
		if err != nil {
			// A foreign record answers exactly like a missing one
			if errors.Is(err, videos.ErrVideoNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
			return
		}

		c.JSON(http.StatusOK, types.ToStatusResponse(video))
	}
}
