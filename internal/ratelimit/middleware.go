package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Middleware returns a gin middleware enforcing a per-client-IP limit of
// `limit` requests per `window` on the wrapped route group. The name
// distinguishes windows between groups sharing one limiter (e.g. "callback"
// vs "listing").
//
// Limiter errors fail open: an unreachable Redis must not take the payment
// callback down with it.
func Middleware(limiter Limiter, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		key := name + ":" + c.ClientIP()
		result, errAllow := limiter.Allow(c.Request.Context(), key, limit, window, time.Now())
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit check failed, allowing request")
			c.Next()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
