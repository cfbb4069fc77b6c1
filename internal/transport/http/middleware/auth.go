package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// SessionVerifier checks a raw session token against signature, expiry,
// and the revocation list.
type SessionVerifier interface {
	VerifySession(ctx context.Context, rawToken string) (*domain.Identity, error)
}

// Auth validates a Bearer session token and stores the resolved identity
// plus the raw token ("sessionToken", needed for sign-out) in the context.
func Auth(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		rawToken := strings.TrimPrefix(header, "Bearer ")
		identity, err := verifier.VerifySession(c.Request.Context(), rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set("identity", identity)
		c.Set("sessionToken", rawToken)
		c.Next()
	}
}
