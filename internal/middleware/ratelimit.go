package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Limiter is a simple fixed-window request limiter keyed by client IP.
// It guards the money-moving endpoints against accidental rapid-fire
// resubmission; it is not a substitute for idempotency keys.
type Limiter struct {
	mu      sync.Mutex
	counts  map[string]int
	window  time.Time
	perMin  int
	nowFunc func() time.Time
}

// NewLimiter creates a limiter allowing perMin requests per client per
// minute.
func NewLimiter(perMin int) *Limiter {
	return &Limiter{
		counts:  make(map[string]int),
		perMin:  perMin,
		nowFunc: time.Now,
	}
}

func (l *Limiter) allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if now.Sub(l.window) >= time.Minute {
		l.window = now
		clear(l.counts)
	}

	l.counts[clientID]++
	return l.counts[clientID] <= l.perMin
}

// RateLimit rejects requests over the limit with 429.
func RateLimit(limiter *Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !limiter.allow(host) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
