package http

import (
	"net/http"
	"strings"

	"mercato/internal/domain"

	"github.com/gin-gonic/gin"
)

const claimsContextKey = "claims"

// authenticate walks a request from bearer extraction to validated claims.
// Every failure mode collapses to one 401 shape so callers cannot tell a
// missing header from a bad signature, an expired token or a stale issuer.
func (s *Server) authenticate(c *gin.Context) {
	if s.verifier == nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "auth configuration error")
		c.Abort()
		return
	}
	raw := extractBearerToken(c.GetHeader("Authorization"))
	if raw == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		c.Abort()
		return
	}
	claims, err := s.verifier.Verify(raw)
	if err != nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
		c.Abort()
		return
	}
	c.Set(claimsContextKey, claims)
	c.Next()
}

// requireRole gates a route on the role claim the authenticate stage already
// validated. It is a predicate only: the token is never parsed again.
func (s *Server) requireRole(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			c.Abort()
			return
		}
		allowed, err := s.gate.Allow(c.Request.Context(), claims.Role, required)
		if err != nil {
			writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "authorization error")
			c.Abort()
			return
		}
		if !allowed {
			writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractBearerToken returns the token part of an Authorization header, or
// "" when the header is absent or uses another scheme. A wrong scheme is an
// authentication failure upstream, never an anonymous fallback.
func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func claimsFrom(c *gin.Context) (domain.TokenClaims, bool) {
	raw, ok := c.Get(claimsContextKey)
	if !ok {
		return domain.TokenClaims{}, false
	}
	claims, ok := raw.(domain.TokenClaims)
	return claims, ok
}
