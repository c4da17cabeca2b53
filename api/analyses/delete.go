package analyses

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/auth"
	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/analyses"
	"github.com/speakwise/speech-api/internal/services/jobs"
)

// Delete removes an analysis, its video record, and the hosted media asset
// @Summary Delete an analysis
// @Description Deletes the analysis and its video record; the hosted asset is destroyed best effort
// @Tags analyses
// @Security BearerAuth
// @Produce json
// @Param id path int true "Analysis ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/analyses/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := auth.UserID(c)

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis ID"})
			return
		}

		result, err := deps.AnalysisService.GetByIDForOwner(c.Request.Context(), uint(id), ownerID)
		if err != nil {
			if errors.Is(err, analyses.ErrAnalysisNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
				return
			}
			if errors.Is(err, analyses.ErrNotOwner) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Not your analysis"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
			return
		}

		video, err := deps.VideoService.GetByID(c.Request.Context(), result.VideoID)
		if err != nil {
			video = nil
		}

		// Asset destruction is best effort and never blocks metadata
		// deletion; a failed destroy is retried by the cleanup worker.
		if video != nil && video.AssetID != "" {
			if err := deps.MediaHost.Destroy(c.Request.Context(), video.AssetID); err != nil {
				log.Printf("[ERROR] Destroying asset %s failed, queueing cleanup: %v", video.AssetID, err)
				if deps.JobService != nil {
					if _, enqueueErr := deps.JobService.EnqueueJob(
						c.Request.Context(),
						models.JobTypeMediaCleanup,
						models.JobPayload{"asset_id": video.AssetID},
						jobs.WithMaxRetries(3),
						jobs.WithCreatedBy("delete"),
					); enqueueErr != nil {
						log.Printf("[ERROR] Failed to enqueue cleanup for asset %s: %v", video.AssetID, enqueueErr)
					}
				}
			}
		}

		var videoID uint
		if video != nil {
			videoID = video.ID
		}
		if err := deps.AnalysisService.DeleteWithVideo(c.Request.Context(), result.ID, videoID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete analysis"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
