package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speech-api/internal/services/auth"
)

// Handler manages authentication middleware
type Handler struct {
	authService *auth.Service
	skipAuth    bool
}

// NewHandler creates a new auth handler
func NewHandler(authService *auth.Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

// SetSkipAuth bypasses token validation entirely, for local development only
func (h *Handler) SetSkipAuth(skip bool) {
	h.skipAuth = skip
}

// Middleware validates bearer tokens and stores the caller identity in the
// request context under "user_id" and "email".
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.skipAuth {
			c.Set("user_id", "dev-user")
			c.Set("email", "dev@localhost")
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := h.authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Sub)
		c.Set("email", claims.Email)

		c.Next()
	}
}

// UserID returns the authenticated caller's id from the request context
func UserID(c *gin.Context) string {
	return c.GetString("user_id")
}
