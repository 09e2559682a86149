// Package robots gates crawl requests against each site's robots.txt
// policy. Policies are fetched once per host and cached for the lifetime
// of the crawl.
package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

const fetchTimeout = 10 * time.Second

// Agent evaluates robots.txt rules with per-host caching. When respect is
// false every URL is allowed and nothing is fetched.
type Agent struct {
	client    *http.Client
	userAgent string
	respect   bool

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewAgent constructs an Agent. The userAgent is the identity rules are
// matched against; client may be nil.
func NewAgent(respect bool, userAgent string, client *http.Client) *Agent {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Agent{
		client:    client,
		userAgent: userAgent,
		respect:   respect,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the target URL may be fetched. A missing or
// unreadable robots.txt imposes no restrictions.
func (a *Agent) Allowed(ctx context.Context, target *url.URL) bool {
	if !a.respect {
		return true
	}
	if target == nil || !target.IsAbs() {
		return false
	}

	data, err := a.rulesFor(ctx, target)
	if err != nil {
		log.Debug().
			Err(err).
			Str("host", target.Host).
			Msg("robots.txt unavailable, allowing")
		return true
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	allowed := data.TestAgent(path, a.userAgent)
	if !allowed {
		log.Debug().
			Str("url", target.String()).
			Msg("URL disallowed by robots.txt")
	}
	return allowed
}

func (a *Agent) rulesFor(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	key := strings.ToLower(target.Scheme + "://" + target.Host)

	a.mu.Lock()
	cached, ok := a.cache[key]
	a.mu.Unlock()
	if ok {
		return cached, nil
	}

	robotsURL := key + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", robotsURL, err)
	}

	a.mu.Lock()
	a.cache[key] = data
	a.mu.Unlock()

	log.Debug().
		Str("robots_url", robotsURL).
		Int("status", resp.StatusCode).
		Msg("Cached robots.txt rules")

	return data, nil
}
