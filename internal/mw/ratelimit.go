package mw

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter stores a rate limiter for each client key.
type KeyedRateLimiter struct {
	keys map[string]*rate.Limiter
	mu   *sync.RWMutex
	r    rate.Limit
	b    int
}

// NewKeyedRateLimiter creates a new KeyedRateLimiter.
func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		keys: make(map[string]*rate.Limiter),
		mu:   &sync.RWMutex{},
		r:    r,
		b:    b,
	}
}

// add creates the limiter of key unless a concurrent caller already did.
func (k *KeyedRateLimiter) add(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if limiter, exists := k.keys[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(k.r, k.b)
	k.keys[key] = limiter
	return limiter
}

// GetLimiter returns the rate limiter for a key.
func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.RLock()
	limiter, exists := k.keys[key]
	k.mu.RUnlock()

	if !exists {
		return k.add(key)
	}
	return limiter
}

// ClientKey identifies a caller by the identity of its resolved session, by
// IP otherwise. Presented tokens are never trusted before Session has
// resolved them, so the limiter must run after Session to key by identity.
func ClientKey(c *gin.Context) string {
	if sess, ok := SessionFrom(c); ok {
		return "identity:" + strconv.FormatInt(sess.Identity.ID, 10)
	}
	return "ip:" + c.ClientIP()
}

// RateLimiter is a middleware for per-client rate limiting.
func RateLimiter(r rate.Limit, b int, key func(c *gin.Context) string) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(key(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}
