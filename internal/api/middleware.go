package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shineum/email-gateway/internal/auth"
	"github.com/shineum/email-gateway/internal/ratelimit"
)

// principalKey is the gin context key the authenticated Principal is stored under.
const principalKey = "principal"

// RateLimit rejects requests from clients that exceeded their fixed-window
// budget. It runs before authentication so over-limit callers never reach
// the key check.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(ratelimit.ClientKey(c.Request)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too Many Requests",
				"message": "Rate limit exceeded. Try again later.",
			})
			return
		}
		c.Next()
	}
}

// APIKeyAuth authenticates the caller against the configured secret. The key
// is taken from the X-API-KEY header, or from the apiKey query parameter for
// GET requests (the webhook path). Absent and wrong keys produce the same
// response.
func APIKeyAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-KEY")
		if c.Request.Method == http.MethodGet {
			if param, ok := c.GetQuery("apiKey"); ok {
				key = param
			}
		}

		principal, err := svc.Authenticate(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": err.Error(),
			})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequestLogger logs one line per request with slog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client", ratelimit.ClientKey(c.Request),
			"duration", time.Since(start),
		)
	}
}
