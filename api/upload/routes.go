package upload

import (
	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/types"
)

// RegisterRoutes registers upload routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", Post(deps))
}
