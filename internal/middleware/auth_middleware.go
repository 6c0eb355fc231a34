package middleware

import (
	"net/http"
	"strings"

	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a Gin middleware for JWT authentication. Tokens are
// issued per worker by the dispatcher auth endpoint.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Use Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			c.Abort()
			return
		}

		// Set worker identity in the context for downstream handlers
		c.Set("workerID", claims.WorkerID)
		c.Set("displayName", claims.DisplayName)
		c.Set("isAdmin", claims.IsAdmin)

		c.Next()
	}
}

// AdminOnlyMiddleware restricts a route to workers flagged as admins at token
// issue time. It requires AuthMiddleware to have run first.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("isAdmin")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin flag not found in token claims. Ensure AuthMiddleware runs first."})
			c.Abort()
			return
		}

		admin, ok := isAdmin.(bool)
		if !ok || !admin {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource."})
			c.Abort()
			return
		}

		c.Next()
	}
}

// WorkerIDFromContext extracts the authenticated worker id set by
// AuthMiddleware.
func WorkerIDFromContext(c *gin.Context) (int64, bool) {
	v, exists := c.Get("workerID")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
