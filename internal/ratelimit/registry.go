// Package ratelimit implements the shared token-bucket throttle that gates
// outbound advertising API calls. Buckets are partitioned by scope string so
// unrelated call classes never contend with each other.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval bounds how long a waiter can oversleep past the moment
// a token becomes available. MaxWait budgets are typically tens of seconds,
// so the error is negligible.
const DefaultPollInterval = 100 * time.Millisecond

// Request describes one acquisition attempt. RPS and Burst apply to the
// bucket for this call; RPS <= 0 disables throttling entirely.
type Request struct {
	Scope   string
	RPS     float64
	Burst   float64
	MaxWait time.Duration
}

// bucket holds the state of one scope. tokens is fractional so low refill
// rates accumulate without quantization bias.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// Registry owns one bucket per scope for the lifetime of the process.
// It is constructor-injected at the service root and shared by all callers.
// Buckets are never evicted; unbounded scope cardinality is a known,
// accepted limitation.
type Registry struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	// OnDenied, if set, is called each time an Acquire gives up without a
	// token. Used to feed metrics.
	OnDenied func(scope string)

	poll time.Duration
	now  func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		buckets: make(map[string]*bucket),
		poll:    DefaultPollInterval,
		now:     time.Now,
	}
}

// getOrCreate returns the bucket for scope, creating it full on first use.
// The map lock makes concurrent creation keep exactly one bucket per scope.
func (r *Registry) getOrCreate(scope string, burst float64) *bucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.buckets[scope]; ok {
		return b
	}
	b := &bucket{tokens: burst, lastRefill: r.now()}
	r.buckets[scope] = b
	return b
}

// Acquire takes one token from the scope's bucket, waiting up to req.MaxWait
// for one to accrue. It returns false when the wait budget is exhausted or
// ctx is cancelled first; running out of tokens is a soft failure, never an
// error. With req.RPS <= 0 it returns true immediately.
func (r *Registry) Acquire(ctx context.Context, req Request) bool {
	if req.RPS <= 0 {
		return true
	}

	b := r.getOrCreate(req.Scope, req.Burst)
	deadline := r.now().Add(req.MaxWait)

	for {
		if b.take(r.now(), req.RPS, req.Burst) {
			return true
		}

		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			r.denied(req.Scope)
			return false
		}

		wait := r.poll
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			r.denied(req.Scope)
			return false
		case <-time.After(wait):
		}
	}
}

// Tokens reports the current token count for a scope after refilling it,
// or 0 if the scope has no bucket yet. Diagnostics only.
func (r *Registry) Tokens(scope string, rps, burst float64) float64 {
	r.mu.Lock()
	b, ok := r.buckets[scope]
	r.mu.Unlock()
	if !ok {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(r.now(), rps, burst)
	return b.tokens
}

func (r *Registry) denied(scope string) {
	if r.OnDenied != nil {
		r.OnDenied(scope)
	}
}

// take refills the bucket for the elapsed time and consumes one token if
// available. Refill and decrement happen under the bucket lock as one unit,
// so concurrent acquirers can never be granted more than the refill math
// justifies.
func (b *bucket) take(now time.Time, rps, burst float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now, rps, burst)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// refill credits elapsed-time tokens, capped at burst. Elapsed time is
// clamped at zero so a clock step backwards never drains the bucket.
func (b *bucket) refill(now time.Time, rps, burst float64) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed.Seconds() * rps
	if b.tokens > burst {
		b.tokens = burst
	}
	b.lastRefill = now
}
