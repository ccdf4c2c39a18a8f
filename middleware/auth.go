package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
)

// UserIDKey is the gin context key holding the signed-in uid.
const UserIDKey = "userId"

// TokenVerifier resolves a bearer token to the uid it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AccessTokenMiddleware rejects requests without a valid bearer token and
// stores the uid under UserIDKey.
func AccessTokenMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			// browsers cannot set headers on websocket upgrades
			header = "Bearer " + c.Query("access_token")
		}
		token, ok := bearerToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		uid, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			glog.V(1).Infof("[auth]rejected token: %s\n", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is expired or invalid"})
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// UserID returns the uid set by AccessTokenMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
