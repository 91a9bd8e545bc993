package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	AccountIDKey = "accountID"
	EmailKey     = "accountEmail"
)

// TokenValidator checks a bearer token.
type TokenValidator interface {
	Validate(token string) (*utils.Claims, error)
}

// abort ends the request with the standard failure envelope.
func abort(c *gin.Context, status int, kind apperr.Kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": msg,
		"error":   kind.String(),
	})
}

func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "Authorization header required")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "Authorization header must be a bearer token")
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(tokenString))
		if err != nil {
			abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "Invalid or expired token")
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}
