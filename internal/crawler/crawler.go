// Package crawler implements the crawl engine: frontier management,
// politeness pacing, and the worker pool that drives fetching and page
// processing.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sitelinks/internal/config"
	"sitelinks/internal/fetcher"
	"sitelinks/internal/processor"
	"sitelinks/internal/report"
	"sitelinks/internal/robots"
)

// Fetcher retrieves a single document. Satisfied by *fetcher.Client.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL, userAgent string) (*fetcher.Page, error)
}

// Engine coordinates one crawl run. A coordinator goroutine owns the
// frontier and dispatches pending URLs to a pool of fetch workers;
// completed pages flow back as discrete results, so frontier updates and
// record accumulation stay single-writer.
type Engine struct {
	cfg  *config.Config
	opts Options

	fetch    Fetcher
	frontier *Frontier
	agents   *AgentPool
	limiter  *HostLimiter
	robots   *robots.Agent
	sink     *report.Sink

	startURL     string
	announceOnce sync.Once
	recordMu     sync.Mutex
}

// New builds an engine for the given run configuration. The sink receives
// one record per successfully processed page, in processing order.
func New(cfg *config.Config, opts Options, sink *report.Sink) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions().Concurrency
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}

	robotsAgent := cfg.UserAgent
	if robotsAgent == "" {
		robotsAgent = defaultUserAgents[0]
	}

	return &Engine{
		cfg:      cfg,
		opts:     opts,
		fetch:    fetcher.NewClient(fetcher.Options{Timeout: opts.Timeout}),
		frontier: NewFrontier(cfg),
		agents:   NewAgentPool(cfg.UserAgent),
		limiter:  NewHostLimiter(opts.Delay),
		robots:   robots.NewAgent(cfg.RobotFilter, robotsAgent, nil),
		sink:     sink,
	}
}

// result is what a worker hands back to the coordinator after finishing
// one frontier entry, successfully or not.
type result struct {
	depth int
	links []string
}

// Run seeds the frontier and crawls until it is exhausted or the context
// is cancelled. Per-page failures are logged and skipped; only a seed
// that cannot be parsed is an error.
func (e *Engine) Run(ctx context.Context) error {
	start, err := e.frontier.Seed(e.cfg)
	if err != nil {
		return err
	}
	e.startURL = start

	log.Debug().
		Str("start_url", start).
		Int("max_urls", e.cfg.MaxURLs).
		Int("crawl_depth", e.cfg.CrawlDepth).
		Int("concurrency", e.opts.Concurrency).
		Msg("Starting crawl")

	tasks := make(chan Entry)
	results := make(chan result)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.opts.Concurrency; i++ {
		g.Go(func() error {
			for entry := range tasks {
				results <- e.crawlOne(gctx, entry)
			}
			return nil
		})
	}

	outstanding := 0
	cancelled := false
	for e.frontier.Len() > 0 || outstanding > 0 {
		var dispatch chan Entry
		var next Entry
		if entry, ok := e.frontier.Peek(); ok {
			next = entry
			dispatch = tasks
		}

		select {
		case dispatch <- next:
			e.frontier.Pop()
			outstanding++
		case res := <-results:
			outstanding--
			e.offerLinks(res)
		case <-gctx.Done():
			cancelled = true
			for outstanding > 0 {
				<-results
				outstanding--
			}
		}
		if cancelled {
			break
		}
	}
	close(tasks)

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Debug().
		Int("pages", e.sink.Count()).
		Int("visited", e.frontier.VisitedCount()).
		Msg("Crawl finished")

	return nil
}

// offerLinks feeds a page's outbound links back into the frontier.
// List Mode never follows links; the frontier also rejects everything
// once the URL cap is reached, so an in-flight overshoot settles here.
func (e *Engine) offerLinks(res result) {
	if e.cfg.Mode() != config.CrawlMode {
		return
	}
	for _, link := range res.links {
		e.frontier.TryEnqueue(link, res.depth+1)
	}
}

// crawlOne handles a single frontier entry: politeness gate, robots gate,
// fetch, extraction, and record emission. Failures skip the page and
// never abort the run.
func (e *Engine) crawlOne(ctx context.Context, entry Entry) result {
	res := result{depth: entry.Depth}

	u, err := url.Parse(entry.URL)
	if err != nil {
		log.Warn().Err(err).Str("url", entry.URL).Msg("Skipping unparseable URL")
		return res
	}

	if !e.robots.Allowed(ctx, u) {
		log.Debug().Str("url", entry.URL).Msg("Skipping URL disallowed by robots.txt")
		return res
	}

	if err := e.limiter.Wait(ctx, u.Hostname()); err != nil {
		return res
	}

	page, err := e.fetch.Fetch(ctx, entry.URL, e.agents.Choose())
	if err != nil {
		log.Warn().Err(err).Str("url", entry.URL).Msg("Fetch failed, skipping page")
		return res
	}

	rec, links := processor.Process(page)
	e.record(rec)

	if e.cfg.Mode() == config.CrawlMode {
		res.links = links
	}
	return res
}

// record appends the page record and emits the console lines. The mutex
// keeps the one-time Crawling announcement, the title lines, and the
// sink's ordering consistent under concurrency.
func (e *Engine) record(rec processor.PageRecord) {
	e.recordMu.Lock()
	defer e.recordMu.Unlock()

	if e.cfg.Mode() == config.CrawlMode {
		e.announceOnce.Do(func() {
			fmt.Fprintf(e.opts.Console, "Crawling %s\n", e.startURL)
		})
	}
	fmt.Fprintln(e.opts.Console, rec.Title)
	e.sink.Add(rec)
}
