package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/regionpress/core/internal/pkg/jwt"
	"github.com/regionpress/core/internal/pkg/response"
)

const (
	ContextKeyUserID = "user_id"
)

// Auth returns a middleware that enforces JWT bearer authentication.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil || claims.UserID == "" {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the user ID if a valid token is present, but does not
// block the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := jwt.Parse(extractToken(c)); err == nil && claims.UserID != "" {
			c.Set(ContextKeyUserID, claims.UserID)
		}
		c.Next()
	}
}

// IsAuthenticated reports whether the request carries a valid identity.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := c.Get(ContextKeyUserID)
	return ok
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if t := c.Query("token"); t != "" {
		return t
	}
	return ""
}
