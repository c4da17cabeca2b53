package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Get handles version requests
// @Summary Service info
// @Description Returns service name and version
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "SpeakWise Speech Analysis API",
			"version":     "1.0.0",
			"description": "API for analyzing recorded speech",
			"status":      "running",
		})
	}
}
