package server

import (
	"strings"

	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextPrincipalKey = "principal"

// AuthRequired resolves the bearer token into a Principal and stores
// it on the request context. Requests without a valid token never
// reach the handler.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.identitySvc.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) (identitydomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return identitydomain.Principal{}, false
	}
	principal, ok := value.(identitydomain.Principal)
	return principal, ok
}

func mustPrincipal(c *gin.Context) (identitydomain.Principal, bool) {
	principal, ok := principalFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return identitydomain.Principal{}, false
	}
	return principal, true
}

// RateLimitWrites throttles mutating endpoints per principal. Runs
// after AuthRequired so the principal is known.
func (s *Server) RateLimitWrites() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.writeLimiter.Enabled() {
			c.Next()
			return
		}
		principal, ok := mustPrincipal(c)
		if !ok {
			return
		}

		result, err := s.writeLimiter.Allow(c.Request.Context(), principal.ID)
		if err != nil {
			// Redis being down must not take writes with it.
			s.log.Warn("write rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", formatRetryAfter(result.RetryAfter))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
