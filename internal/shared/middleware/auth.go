package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bloghub-backend/internal/domains/identity"
	"bloghub-backend/pkg/auth"
)

// AuthMiddleware verifies the identity-provider session token and resolves the
// acting identity into the request context. Rejects before any handler runs.
func AuthMiddleware(mgr *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Take the token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "missing authorization header"}})
			c.Abort()
			return
		}

		// 2. Extract the token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "invalid authorization header format"}})
			c.Abort()
			return
		}

		// 3. Verify the session token
		claims, err := mgr.Verify(parts[1])
		if err != nil {
			c.JSON(401, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "invalid session token"}})
			c.Abort()
			return
		}

		// 4. Resolve identity into context
		identity.IntoContext(c, identity.FromClaims(claims))

		c.Next()
	}
}
