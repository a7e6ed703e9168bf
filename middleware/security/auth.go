package security

import (
	"net/http"
	"strings"

	"Alvin/tools/security"

	"github.com/gin-gonic/gin"
)

// context key the guarded handlers read the resolved user from
const CtxUserIDKey = "userID"

type Options struct {
	JWT security.Options
	// HeaderToken is consulted before Authorization: Bearer. Default
	// "authorization".
	HeaderToken string
}

func DefaultOptions(jwt security.Options) *Options {
	return &Options{JWT: jwt, HeaderToken: "authorization"}
}

// Middleware extracts the bearer token, verifies it and stores the subject
// user ID in the gin context. Requests without a valid token are aborted.
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		if token == "" {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := security.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}
