package crawler

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"sitelinks/internal/config"
	"sitelinks/internal/util"
)

// Entry is one unit of pending work: a URL and the depth it was
// discovered at.
type Entry struct {
	URL   string
	Depth int
}

// Frontier owns the set of discovered URLs, the queue of URLs pending
// fetch, and the crawl bounds. Every URL ever enqueued stays in the
// visited set, so a URL is never fetched twice in one run.
type Frontier struct {
	mode      config.Mode
	maxURLs   int
	maxDepth  int
	parentDir string
	domain    string

	mu      sync.Mutex
	visited map[string]struct{}
	pending []Entry
	capHit  bool
}

// NewFrontier builds an empty frontier bounded by the configuration.
func NewFrontier(cfg *config.Config) *Frontier {
	return &Frontier{
		mode:      cfg.Mode(),
		maxURLs:   cfg.MaxURLs,
		maxDepth:  cfg.CrawlDepth,
		parentDir: cfg.ParentDir,
		visited:   make(map[string]struct{}),
	}
}

// Seed loads the initial work. In Crawl Mode the start URL is normalised,
// the allowed domain derived from it, and the seed enqueued at depth 0.
// In List Mode the caller-supplied list is deduplicated and enqueued as a
// flat worklist. Returns the (possibly scheme-corrected) start URL in
// Crawl Mode.
func (f *Frontier) Seed(cfg *config.Config) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode == config.ListMode {
		for _, raw := range cfg.URLs() {
			if _, seen := f.visited[raw]; seen {
				continue
			}
			f.visited[raw] = struct{}{}
			f.pending = append(f.pending, Entry{URL: raw})
		}
		return "", nil
	}

	start := util.NormaliseStartURL(cfg.StartURL)
	u, err := url.Parse(start)
	if err != nil {
		return "", fmt.Errorf("invalid start URL %q: %w", cfg.StartURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("start URL %q has no scheme or host", cfg.StartURL)
	}

	f.domain = util.AllowedDomain(u)
	f.visited[start] = struct{}{}
	f.pending = append(f.pending, Entry{URL: start, Depth: 0})
	return start, nil
}

// TryEnqueue offers a discovered URL to the frontier and reports whether
// it was accepted. Rejections are silent: already visited, over the depth
// bound, outside the allowed domain or parent-directory scope, or past the
// maximum URL count. List Mode never enqueues discovered links.
func (f *Frontier) TryEnqueue(rawURL string, depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode == config.ListMode {
		return false
	}
	if _, seen := f.visited[rawURL]; seen {
		return false
	}
	if depth > f.maxDepth {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !util.HostWithinDomain(u.Hostname(), f.domain) {
		return false
	}
	if f.parentDir != "" && !strings.HasPrefix(u.Path, f.parentDir) {
		return false
	}

	if len(f.visited) >= f.maxURLs {
		if !f.capHit {
			f.capHit = true
			log.Info().
				Int("max_urls", f.maxURLs).
				Msg("Reached maximum URL count, no further URLs will be enqueued")
		}
		return false
	}

	f.visited[rawURL] = struct{}{}
	f.pending = append(f.pending, Entry{URL: rawURL, Depth: depth})
	return true
}

// Peek returns the next pending entry without removing it.
func (f *Frontier) Peek() (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return Entry{}, false
	}
	return f.pending[0], true
}

// Pop removes and returns the next pending entry.
func (f *Frontier) Pop() (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return Entry{}, false
	}
	entry := f.pending[0]
	f.pending = f.pending[1:]
	return entry, true
}

// Len reports the number of pending entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// VisitedCount reports how many URLs have ever been enqueued.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}
