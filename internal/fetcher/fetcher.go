// Package fetcher retrieves documents over HTTP and exposes them as parsed
// DOM trees for the page processor to query.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

// Page is a fetched document: the raw response plus a query capability
// over the parsed HTML.
type Page struct {
	// URL is the final URL of the response, after any redirects.
	URL        *url.URL
	StatusCode int
	Header     http.Header
	Body       []byte
	Doc        *goquery.Document
}

// Options configures the HTTP transport behaviour of a Client.
type Options struct {
	Timeout time.Duration
}

// Client fetches single documents. Frontier dedup, robots gating and
// politeness pacing are all decided by the caller before Fetch is invoked,
// so the collector itself runs with revisits allowed and robots ignored.
type Client struct {
	collector *colly.Collector
}

// NewClient creates a fetch client with a pooled HTTP transport.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetClient(&http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     120 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	})

	return &Client{collector: c}
}

// Fetch retrieves targetURL with the given User-Agent and returns the
// document. Transport failures and non-2xx statuses are errors; the caller
// skips the page and moves on.
func (c *Client) Fetch(ctx context.Context, targetURL, userAgent string) (*Page, error) {
	var page *Page
	var fetchErr error

	clone := c.collector.Clone()

	clone.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	clone.OnResponse(func(r *colly.Response) {
		body := make([]byte, len(r.Body))
		copy(body, r.Body)

		page = &Page{
			URL:        r.Request.URL,
			StatusCode: r.StatusCode,
			Header:     r.Headers.Clone(),
			Body:       body,
		}
	})

	clone.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("fetch %s: status %d", targetURL, r.StatusCode)
			return
		}
		fetchErr = fmt.Errorf("fetch %s: %w", targetURL, err)
	})

	done := make(chan error, 1)
	go func() {
		done <- clone.Visit(targetURL)
	}()

	select {
	case visitErr := <-done:
		if fetchErr != nil {
			return nil, fetchErr
		}
		if visitErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", targetURL, visitErr)
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if page == nil {
		return nil, fmt.Errorf("fetch %s: no response received", targetURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", targetURL, err)
	}
	page.Doc = doc

	log.Debug().
		Str("url", page.URL.String()).
		Int("status", page.StatusCode).
		Int("bytes", len(page.Body)).
		Msg("Fetched page")

	return page, nil
}
