package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/placevisit-backend-go/internal/security"
	"github.com/jengzang/placevisit-backend-go/pkg/response"
)

// Context keys set by Auth
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Auth requires a valid bearer token and stores the caller in the context
func Auth(verifier security.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "Missing bearer token")
			return
		}

		principal, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				response.Unauthorized(c, "Token expired")
				return
			}
			response.Unauthorized(c, "Invalid token")
			return
		}

		c.Set(ContextUserID, principal.UserID)
		c.Set(ContextRole, principal.Role)
		c.Next()
	}
}

// RequireRole rejects callers without the given role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			response.Forbidden(c, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
