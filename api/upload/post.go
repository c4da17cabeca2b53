package upload

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/auth"
	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/internal/metrics"
	"github.com/speakwise/speech-api/internal/models"
)

// Post handles a video upload
// @Summary Upload a video for analysis
// @Description Accepts a video file, hands it to the media host for transcoding, and returns a video id to poll
// @Tags upload
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video file"
// @Param video_name formData string false "Display name"
// @Success 202 {object} types.UploadResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 502 {object} types.ErrorResponse
// @Router /api/v1/upload [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := auth.UserID(c)

		fileHeader, err := c.FormFile("video")
		if err != nil || fileHeader.Size == 0 {
			metrics.UploadsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or empty video file"})
			return
		}

		displayName := strings.TrimSpace(c.PostForm("video_name"))
		if displayName == "" {
			displayName = fileHeader.Filename
		}

		// The record exists with a placeholder asset id before any byte
		// leaves the process, so a crash mid-transfer is observable.
		video := &models.Video{
			OwnerID:      ownerID,
			OriginalName: fileHeader.Filename,
			DisplayName:  displayName,
			ContentType:  fileHeader.Header.Get("Content-Type"),
			Size:         fileHeader.Size,
		}
		if err := deps.VideoService.Create(c.Request.Context(), video); err != nil {
			metrics.UploadsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video record"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			metrics.UploadsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer file.Close()

		publicID := fmt.Sprintf("speakwise/%s%s", video.UUID, filepath.Ext(fileHeader.Filename))

		result, err := deps.MediaHost.Upload(c.Request.Context(), publicID, fileHeader.Filename, file)
		if err != nil {
			// Record stays in uploading; the client learns about the
			// stuck state through the status endpoint.
			log.Printf("[ERROR] Media host handoff failed for video %s: %v", video.UUID, err)
			metrics.UploadsTotal.WithLabelValues("handoff_failed").Inc()
			c.JSON(http.StatusBadGateway, gin.H{"error": "Media host upload failed"})
			return
		}

		if err := deps.VideoService.MarkProcessing(c.Request.Context(), video, result.PublicID); err != nil {
			metrics.UploadsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video record"})
			return
		}

		metrics.UploadsTotal.WithLabelValues("accepted").Inc()

		c.JSON(http.StatusAccepted, types.UploadResponse{
			VideoID: video.UUID,
			Status:  string(video.Status),
		})
	}
}
