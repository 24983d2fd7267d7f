// Package throttle enforces politeness delays between requests to the same host.
package throttle

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out requests per host. Outlets sharing a host share a
// limiter, so parallel workers cannot hammer one site; requests to distinct
// hosts proceed without mutual delay. This is the one piece of deliberately
// shared mutable state in the harvester.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minDelay time.Duration
}

// NewHostLimiter creates a limiter enforcing minDelay between consecutive
// requests to the same host. A non-positive minDelay disables throttling.
func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

// Wait blocks until a request to rawURL's host is permitted or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if l.minDelay <= 0 {
		return nil
	}
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	return l.limiterFor(host).Wait(ctx)
}

func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.minDelay), 1)
		l.limiters[host] = lim
	}
	return lim
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
