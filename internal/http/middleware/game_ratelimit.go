package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PlayerRateLimit limits game actions (clicks, purchases) per player rather
// than per IP. The player is taken from the :id route parameter.
func PlayerRateLimit(action string, maxActions int, window time.Duration) gin.HandlerFunc {
	fallback := newLocalLimiter(maxActions, window)
	return func(c *gin.Context) {
		playerID := c.Param("id")
		if playerID == "" {
			c.Next()
			return
		}

		var (
			count   int64
			allowed bool
		)
		if redisClient != nil {
			key := "game_rl:" + action + ":" + playerID + ":" + strconv.FormatInt(window.Milliseconds(), 10)
			val, ok := fixedWindow(c.Request.Context(), key, window)
			if !ok {
				// On Redis error, fail-open
				c.Header("X-GameRateLimit-Error", "redis-error")
				c.Next()
				return
			}
			count = val
			allowed = val <= int64(maxActions)
			c.Header("X-GameRateLimit-Limit", strconv.Itoa(maxActions))
			c.Header("X-GameRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxActions)-count), 10))
		} else {
			allowed = fallback.allow(action + ":" + playerID)
		}

		if !allowed {
			RLBlocked.WithLabelValues("game:" + action).Inc()
			c.Header("Retry-After", strconv.Itoa(max(1, int(window.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": action + " rate limit exceeded",
			})
			return
		}

		RLRequests.WithLabelValues("game:" + action).Inc()
		c.Next()
	}
}
