package middleware

import (
	"net/http"
	"sync"
	"time"

	apiContext "burnstop/internal/api/context"
	"burnstop/internal/pkg/errors"
	"burnstop/internal/platform/auth"
)

// RateLimiter keeps a per-caller token bucket for write endpoints.
// Authenticated callers are keyed by user id, everyone else by remote
// address. In-memory only; a restart resets all buckets.
type RateLimiter struct {
	store  sync.Map // map[string]*bucket
	limit  int
	closed chan struct{}
}

type bucket struct {
	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

func NewRateLimiter(writePerMinute int) *RateLimiter {
	if writePerMinute <= 0 {
		writePerMinute = 60
	}
	rl := &RateLimiter{limit: writePerMinute, closed: make(chan struct{})}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.closed:
			return
		case <-ticker.C:
			now := time.Now()
			rl.store.Range(func(key, value interface{}) bool {
				b := value.(*bucket)
				b.mu.Lock()
				if now.Sub(b.lastAccess) > 10*time.Minute {
					rl.store.Delete(key)
				}
				b.mu.Unlock()
				return true
			})
		}
	}
}

func (rl *RateLimiter) Close() { close(rl.closed) }

func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	val, _ := rl.store.LoadOrStore(key, &bucket{tokens: rl.limit, lastRefill: now, lastAccess: now})
	b := val.(*bucket)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastAccess = now

	refill := int(now.Sub(b.lastRefill).Seconds() * float64(rl.limit) / 60.0)
	if refill > 0 {
		b.tokens += refill
		if b.tokens > rl.limit {
			b.tokens = rl.limit
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims); ok {
			key = claims.UserID
		}

		if !rl.allow(key) {
			w.Header().Set("Retry-After", "60")
			errors.WriteError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded", nil)
			return
		}

		next(w, r)
	}
}
