package session

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitecrew-app/sitecrew-backend/internal/identity"
)

const (
	CtxUID   = "uid"
	CtxEmail = "email"
)

// TokenVerifier validates a bearer ID token. *identity.Client satisfies it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (*identity.Identity, error)
}

// RevocationChecker reports whether a token predates its identity's
// sign-out. *Broker satisfies it.
type RevocationChecker interface {
	SignedOutAfter(ctx context.Context, uid string, issuedAt int64) (bool, error)
}

// Middleware authenticates requests with a Firebase ID token and rejects
// tokens issued before the identity signed out. A rejected request is the
// client's signal to redirect to sign-in, never a server fault.
func Middleware(verifier TokenVerifier, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		id, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		stale, err := revocations.SignedOutAfter(c.Request.Context(), id.UID, id.IssuedAt)
		if err != nil {
			// The stamp is advisory; Firebase still enforces refresh-token
			// revocation when the token expires.
			log.Printf("[warn] session: sign-out stamp lookup for %s: %v", id.UID, err)
		} else if stale {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session signed out"})
			c.Abort()
			return
		}

		c.Set(CtxUID, id.UID)
		c.Set(CtxEmail, id.Email)

		c.Next()
	}
}

// UserUID extracts the authenticated identity from the Gin context.
// Set by Middleware.
func UserUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUID))
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
