package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"reservation-engine/internal/handler/httperr"
	"reservation-engine/internal/pkg/cookie"
	"reservation-engine/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const ctxRequesterIDKey = "requester_id"

var errUnauthorized = httperr.ErrUnauthorized

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

// RequireAuth resolves the requester from a bearer token (or the access_token cookie).
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Access token required", nil)
			return
		}

		claims, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		c.Set(ctxRequesterIDKey, claims.RequesterID)
		c.Set("jwt_claims", map[string]any{
			"requester_id": claims.RequesterID,
		})
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(authHeader[len("Bearer "):]); token != "" {
			return token
		}
	}
	return cookie.GetAccessToken(c)
}

func GetRequesterID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxRequesterIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// SetRequesterID is used by tests that bypass token validation.
func SetRequesterID(c *gin.Context, requesterID string) {
	c.Set(ctxRequesterIDKey, requesterID)
}
