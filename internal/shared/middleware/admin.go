package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wildbook-backend/internal/shared/response"
)

// AdminMiddleware requires the admin role. Must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			response.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "admin role required")
			c.Abort()
			return
		}

		role, ok := roleInterface.(string)
		if !ok || role != "admin" {
			response.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
