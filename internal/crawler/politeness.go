package crawler

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultUserAgents is the built-in pool of desktop and mobile browser
// identities rotated across requests.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/103.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/103.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:102.0) Gecko/20100101 Firefox/102.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 15_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.2 Mobile/15E148 Safari/604.1",
}

// AgentPool selects a User-Agent uniformly per outgoing request. A custom
// agent from the configuration joins the pool when it is not already in it.
type AgentPool struct {
	agents []string
}

// NewAgentPool builds the pool from the defaults plus an optional custom
// agent.
func NewAgentPool(custom string) *AgentPool {
	agents := make([]string, len(defaultUserAgents))
	copy(agents, defaultUserAgents)

	custom = strings.TrimSpace(custom)
	if custom != "" {
		duplicate := false
		for _, a := range agents {
			if a == custom {
				duplicate = true
				break
			}
		}
		if !duplicate {
			agents = append(agents, custom)
		}
	}

	return &AgentPool{agents: agents}
}

// Choose picks one agent at random, independently per request.
func (p *AgentPool) Choose() string {
	return p.agents[rand.Intn(len(p.agents))]
}

// Agents returns the pool contents.
func (p *AgentPool) Agents() []string {
	out := make([]string, len(p.agents))
	copy(out, p.agents)
	return out
}

// HostLimiter paces requests to the same host: a token-bucket limiter
// enforces a monotonic minimum gap of half the base delay, and a random
// jitter on top spreads dispatches across [0.5, 1.5) of the base delay so
// request bursts do not synchronise.
type HostLimiter struct {
	base time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter with the given base delay between
// requests to one host. A non-positive base disables pacing.
func NewHostLimiter(base time.Duration) *HostLimiter {
	return &HostLimiter{
		base:     base,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the politeness constraints for host are satisfied or
// the context is cancelled.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l.base <= 0 {
		return nil
	}
	host = strings.ToLower(host)

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.base/2), 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	jitter := time.Duration(rand.Int63n(int64(l.base)))
	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
