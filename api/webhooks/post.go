package webhooks

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/internal/metrics"
	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/videos"
)

// notification is the body of a transcode completion callback
type notification struct {
	NotificationType string `json:"notification_type"`
	PublicID         string `json:"public_id"`
	SecureURL        string `json:"secure_url"`
	Eager            []struct {
		SecureURL string `json:"secure_url"`
	} `json:"eager"`
}

// playbackURL prefers the eager transcode URL over the original asset URL
func (n *notification) playbackURL() string {
	if len(n.Eager) > 0 && n.Eager[0].SecureURL != "" {
		return n.Eager[0].SecureURL
	}
	return n.SecureURL
}

// Post handles a transcode completion notification from the media host
// @Summary Media host completion webhook
// @Description Verifies the notification signature, marks the video processed, and enqueues analysis
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/webhooks/cloudinary [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			metrics.WebhooksTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable request body"})
			return
		}

		// Authenticity check happens before the body is even parsed
		timestamp := c.GetHeader("X-Cld-Timestamp")
		signature := c.GetHeader("X-Cld-Signature")
		if err := deps.MediaHost.VerifyNotification(body, timestamp, signature); err != nil {
			log.Printf("[DEBUG] Rejected webhook: %v", err)
			metrics.WebhooksTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}

		var payload notification
		if err := json.Unmarshal(body, &payload); err != nil || payload.PublicID == "" {
			metrics.WebhooksTotal.WithLabelValues("malformed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing expected notification fields"})
			return
		}

		playbackURL := payload.playbackURL()
		if playbackURL == "" {
			metrics.WebhooksTotal.WithLabelValues("malformed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Notification carries no playback URL"})
			return
		}

		video, err := deps.VideoService.GetByAssetID(c.Request.Context(), payload.PublicID)
		if err != nil {
			if errors.Is(err, videos.ErrVideoNotFound) {
				metrics.WebhooksTotal.WithLabelValues("unknown_asset").Inc()
				c.JSON(http.StatusNotFound, gin.H{"error": "Unknown asset"})
				return
			}
			metrics.WebhooksTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
			return
		}

		// Duplicate or late notifications are acknowledged without mutation
		if video.Status != models.VideoStatusProcessing {
			log.Printf("[DEBUG] Ignoring webhook for video %s in status %s", video.UUID, video.Status)
			metrics.WebhooksTotal.WithLabelValues("ignored").Inc()
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		if err := deps.VideoService.MarkProcessed(c.Request.Context(), video, playbackURL); err != nil {
			metrics.WebhooksTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
			return
		}

		// Fire and forget: the analysis runs on the worker pool, and this
		// handler answers as soon as the job row exists. Pipeline failures
		// surface only through the record status.
		if _, err := deps.JobService.EnqueueUniqueJob(
			c.Request.Context(),
			models.JobTypeVideoAnalysis,
			models.JobPayload{"video_id": video.ID},
			"video_id",
			jobs.WithCreatedBy("webhook"),
		); err != nil {
			log.Printf("[ERROR] Failed to enqueue analysis for video %s: %v", video.UUID, err)
		}

		metrics.WebhooksTotal.WithLabelValues("accepted").Inc()

		c.JSON(http.StatusOK, gin.H{"status": "accepted"})
	}
}
