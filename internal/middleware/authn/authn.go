// Package authn guards routes with bearer session tokens
package authn

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/response"
)

const principalKey = "principal"

// Verifier turns a bearer token into a principal
type Verifier interface {
	Verify(token string) (*auth.Principal, error)
}

// RequireVoter admits only participant sessions; admin tokens get 403
func RequireVoter(v Verifier) gin.HandlerFunc {
	return require(v, false)
}

// RequireAdmin admits only sessions holding the admin capability
func RequireAdmin(v Verifier) gin.HandlerFunc {
	return require(v, true)
}

func require(v Verifier, admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.UnauthorizedError(c, "missing session token")
			return
		}

		p, err := v.Verify(token)
		if err != nil {
			if auth.IsExpired(err) {
				response.UnauthorizedError(c, "session expired")
				return
			}
			response.UnauthorizedError(c, "invalid session token")
			return
		}

		if admin && !p.IsAdmin() {
			logger.Auth().Error("admin route rejected", "voter_key", p.VoterKey, "path", c.Request.URL.Path)
			response.ForbiddenError(c, "admin rights required")
			return
		}
		if !admin && !p.IsVoter() {
			logger.Auth().Error("voter route rejected", "voter_key", p.VoterKey, "role", p.Role, "path", c.Request.URL.Path)
			response.ForbiddenError(c, "participant session required")
			return
		}

		c.Set(principalKey, *p)
		c.Next()
	}
}

// Principal returns the caller stored by the middleware
func Principal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// extractToken reads the Authorization header, falling back to the token
// query parameter for EventSource clients that cannot set headers.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}
