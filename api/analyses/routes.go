package analyses

import (
	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/api/types"
)

// RegisterRoutes registers analysis dashboard routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.DELETE("/:id", Delete(deps))
}
