// Package reattach throttles how often a filter may be recompiled and
// reattached in response to registry change notifications, so a noisy
// sequence of updates cannot thrash the kernel attach path.
package reattach

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle rate-limits reattach cycles per filter name.
type Throttle struct {
	rps   float64
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New builds a Throttle allowing rps reattaches per second per filter, up
// to burst in a single instant.
func New(rps float64, burst int) *Throttle {
	return &Throttle{
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a reattach of the named filter may proceed now.
func (t *Throttle) Allow(name string) bool {
	return t.limiterFor(name).Allow()
}

func (t *Throttle) limiterFor(name string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[name]
	if !ok {
		l = rate.NewLimiter(rate.Limit(t.rps), t.burst)
		t.limiters[name] = l
	}
	return l
}

// ErrThrottled is returned by Guard when a reattach was refused.
type ErrThrottled struct{ Filter string }

func (e ErrThrottled) Error() string {
	return fmt.Sprintf("reattach: %q throttled, too many recompile/reattach cycles", e.Filter)
}

// Guard runs fn only if the named filter is not currently throttled.
func (t *Throttle) Guard(name string, fn func() error) error {
	if !t.Allow(name) {
		return ErrThrottled{Filter: name}
	}
	return fn()
}
