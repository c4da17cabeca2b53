package status

import (
	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/types"
)

// RegisterRoutes registers status polling routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/:videoId", Get(deps))
}
