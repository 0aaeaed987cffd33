package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/launchpanel/hub/internal/metrics"
	"golang.org/x/time/rate"
)

// clientLimiters caches one x/time/rate limiter per client key, created
// lazily. Entries live for the process lifetime, same trade-off as the
// outbound token bucket registry.
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func (c *clientLimiters) get(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lim, ok := c.limiters[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(c.rps, c.burst)
	c.limiters[key] = lim
	return lim
}

// Throttle limits inbound API requests per client address. rps <= 0
// disables the middleware entirely.
func Throttle(rps float64, burst int) func(http.Handler) http.Handler {
	store := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	return func(next http.Handler) http.Handler {
		if rps <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.get(clientKey(r)).Allow() {
				metrics.ThrottledRequests.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(1))
				http.Error(w, `{"error":{"code":"E_RATE_LIMITED","message":"too many requests"}}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey buckets by client IP; the ephemeral port would defeat limiting.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
