package middleware

import (
	"sync"
	"time"

	"watchlikemeBackend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter tracks request rates per client IP with expiration, so the
// visitor map stays bounded.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func createLimiter(requestsPerMinute uint) *ipRateLimiter {
	if requestsPerMinute == 0 {
		requestsPerMinute = 1
	}

	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    int(requestsPerMinute),
		ttl:      10 * time.Minute,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, k)
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.Allow()
}

// LoginRateLimiter throttles credential endpoints per client IP. Requests
// over the limit fail with 429 before any password check runs.
func LoginRateLimiter(requestsPerMinute uint) gin.HandlerFunc {
	limiter := createLimiter(requestsPerMinute)

	return func(ctx *gin.Context) {
		if !limiter.allow(ctx.ClientIP()) {
			ctx.JSON(utils.CreateErrorResponse(utils.ErrorTooManyRequests))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
