// Package middleware provides the Gin middleware chain for the catalog API.
//
// Ordering is enforced in router.go:
//
//	Security → RequestID → Metrics → Auth → Handler
//
// Security headers run first so they appear on every response including
// errors. Auth populates the caller identity; the capability guards
// (RequireDeveloper, RequireAdmin) read from that context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/app-catalog/app-catalog/internal/auth"
)

// Context keys populated by AuthMiddleware.
const (
	ContextUserID      = "user_id"
	ContextEmail       = "email"
	ContextIsAdmin     = "is_admin"
	ContextIsDeveloper = "is_developer"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// AuthMiddleware validates the Bearer access token and stores the caller's
// identity and capability flags in the request context. Refresh tokens are
// rejected here; they are only good for the refresh endpoint.
func AuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or malformed authorization header",
			})
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil || claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Set(ContextIsDeveloper, claims.IsDeveloper)

		c.Next()
	}
}

// RequireDeveloper aborts with 403 unless the authenticated caller is a
// developer or an admin. Must run after AuthMiddleware.
func RequireDeveloper() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsDeveloper) && !c.GetBool(ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Developer access required",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated caller is an admin.
// Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated user's ID from the request context, or
// "" for unauthenticated requests.
func CallerID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
