package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	last    atomic.Int64 // unix nanos
}

// NewRateLimitPerIP limits each client IP to rps with the given burst.
// Idle IPs are dropped after ttl; the sweeper stops with ctx.
func NewRateLimitPerIP(ctx context.Context, rps float64, burst, cacheSize int, ttl time.Duration) gin.HandlerFunc {
	visitors, _ := lru.New[string, *visitor](cacheSize)

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-ttl).UnixNano()
				for _, key := range visitors.Keys() {
					if v, ok := visitors.Peek(key); ok && v.last.Load() < cutoff {
						visitors.Remove(key)
					}
				}
			}
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		v, ok := visitors.Get(ip)
		if !ok {
			fresh := &visitor{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			// concurrent first requests must share whichever limiter landed first
			if prev, found, _ := visitors.PeekOrAdd(ip, fresh); found {
				v = prev
			} else {
				v = fresh
			}
		}
		v.last.Store(time.Now().UnixNano())

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too Many Requests"})
			return
		}
		c.Next()
	}
}
