package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AdminRole is the value of the "role" claim that unlocks destructive routes.
const AdminRole = "admin"

// AuthMiddleware verifies a Bearer token and stores its claims under "claims".
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		token, ok := strings.CutPrefix(auth, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware; it rejects tokens without role=admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("claims")
		claims, _ := v.(map[string]interface{})
		if hasRole(claims, AdminRole) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
	}
}

// hasRole accepts either "role": "admin" or "roles": ["admin", ...].
func hasRole(claims map[string]interface{}, role string) bool {
	if claims == nil {
		return false
	}
	if r, ok := claims["role"].(string); ok && r == role {
		return true
	}
	if rs, ok := claims["roles"].([]interface{}); ok {
		for _, r := range rs {
			if s, ok := r.(string); ok && s == role {
				return true
			}
		}
	}
	return false
}

// AdminGuard chains token verification and the admin role check.
func AdminGuard(ver Verifier) []gin.HandlerFunc {
	return []gin.HandlerFunc{AuthMiddleware(ver), RequireAdmin()}
}
