package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// localLimiter is the in-process token bucket used when Redis is not
// configured. Buckets idle for longer than ttl are dropped.
type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	every    rate.Limit
	burst    int
	ttl      time.Duration
	lastGC   time.Time
}

type localEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newLocalLimiter(maxRequests int, window time.Duration) *localLimiter {
	return &localLimiter{
		limiters: make(map[string]*localEntry),
		every:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
		ttl:      window * 10,
		lastGC:   time.Now(),
	}
}

func (l *localLimiter) allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > l.ttl {
		for k, e := range l.limiters {
			if now.Sub(e.seen) > l.ttl {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = e
	}
	e.seen = now
	return e.limiter.AllowN(now, 1)
}

func (l *localLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// SimpleRateLimit blocks clients that send more than maxRequests per window,
// tracked in process memory
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	l := newLocalLimiter(maxRequests, window)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
