package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// RequireAuth validates the Bearer JWT, places the principal into the
// context and continues.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) < 8 || header[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
				"message": "missing or invalid Authorization header",
			})
			return
		}

		claims, err := ParseAndValidate(secret, header[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRoles ensures the authenticated principal has one of the allowed
// roles.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	set := map[string]struct{}{}
	for _, r := range allowed {
		set[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := set[c.GetString(CtxRole)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "forbidden",
				"message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}
