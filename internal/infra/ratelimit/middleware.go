package ratelimit

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
)

// DenyFunc writes the response for a request over its limit.
type DenyFunc func(c *gin.Context, res Result)

// Middleware limits requests per client IP under scope. A limiter failure
// lets the request through.
func Middleware(l Limiter, scope string, logger *slog.Logger, deny DenyFunc) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		res, err := l.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit check failed", "scope", scope, "error", err)
			c.Next()
			return
		}
		if res.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))
		}
		if !res.Allowed {
			deny(c, res)
			c.Abort()
			return
		}
		c.Next()
	}
}
