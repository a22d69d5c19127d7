package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter gates requests per client IP with a token bucket holding
// `requests` tokens that refills over `window`.
type RateLimiter struct {
	name    string
	message string
	limit   rate.Limit
	burst   int
	window  time.Duration

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(name string, requests int, window time.Duration, message string) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	return &RateLimiter{
		name:      name,
		message:   message,
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		window:    window,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// Allow consumes one token for key.
func (l *RateLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// idle visitors have a full bucket again, so dropping them loses nothing
	if now.Sub(l.lastSweep) > l.window {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.window {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			metrics.RateLimitedTotal.WithLabelValues(l.name).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": l.message})
			return
		}
		c.Next()
	}
}
