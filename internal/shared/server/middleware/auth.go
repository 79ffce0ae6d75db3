package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"housy-backend/internal/shared/auth"
	"housy-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
	claimsKey    = "claims"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (auth.Claims, error)
}

// Auth requires a valid bearer token and stores the identity in the gin and request contexts.
func Auth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := v.Validate(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userIDKey, claims.UserID())
		c.Set(userRoleKey, string(claims.Role))
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireRoles denies the request with 403 unless the caller's role is in roles.
// It must run after Auth.
func RequireRoles(roles ...auth.Role) gin.HandlerFunc {
	allowed := append([]auth.Role(nil), roles...)
	return func(c *gin.Context) {
		var claims *auth.Claims
		if cl, ok := ClaimsFromContext(c); ok {
			claims = &cl
		}
		if err := auth.Authorize(claims, allowed); err != nil {
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient role", nil)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// ClaimsFromContext returns the claims stored by Auth.
func ClaimsFromContext(c *gin.Context) (auth.Claims, bool) {
	if c == nil {
		return auth.Claims{}, false
	}
	val, ok := c.Get(claimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := val.(auth.Claims)
	return claims, ok
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// RoleFromContext fetches the caller's role set by the auth middleware.
func RoleFromContext(c *gin.Context) auth.Role {
	if c == nil {
		return ""
	}
	return auth.Role(c.GetString(userRoleKey))
}
