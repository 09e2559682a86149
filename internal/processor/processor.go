// Package processor turns a fetched document into a page metric record and
// the set of outbound links discovered on the page.
package processor

import (
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"sitelinks/internal/fetcher"
	"sitelinks/internal/util"
)

// PageRecord holds the metrics extracted from one successfully fetched
// page. Records are immutable once created and collected by the report
// sink in processing order.
type PageRecord struct {
	URL          string
	Title        string
	LinkCount    int
	ControlCount int
	ByteCount    int
	Updated      string
}

// metaDateLookups are the last-modified meta signals, in resolution order.
// The first one that yields a non-empty value wins.
var metaDateLookups = []struct {
	attr  string
	value string
}{
	{"name", "last-modified"},
	{"property", "article:modified_time"},
	{"name", "last_modified"},
	{"name", "modified"},
}

// nativeControls are the interactive HTML tags counted alongside elements
// carrying an explicit ARIA role.
var nativeControls = map[string]struct{}{
	"button":   {},
	"input":    {},
	"select":   {},
	"textarea": {},
}

// Process extracts the metric record and the outbound link set from a
// fetched page. Links are returned as absolute URL strings, deduplicated
// and sorted; missing titles and absent date signals are not errors.
func Process(page *fetcher.Page) (PageRecord, []string) {
	title := page.Doc.Find("title").First().Text()
	links := extractLinks(page)

	rec := PageRecord{
		URL:          page.URL.String(),
		Title:        title,
		LinkCount:    len(links),
		ControlCount: countControls(page.Doc),
		ByteCount:    len(page.Body),
		Updated:      resolveUpdated(page),
	}

	log.Debug().
		Str("url", rec.URL).
		Str("title", rec.Title).
		Int("links", rec.LinkCount).
		Int("controls", rec.ControlCount).
		Int("bytes", rec.ByteCount).
		Str("updated", rec.Updated).
		Msg("Processed page")

	return rec, links
}

// extractLinks collects every anchor href resolved against the page URL,
// whatever its scheme; an empty href resolves to the page itself.
// Duplicate resolved URLs collapse before counting.
func extractLinks(page *fetcher.Page) []string {
	seen := make(map[string]struct{})

	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		resolved, err := page.URL.Parse(strings.TrimSpace(s.AttrOr("href", "")))
		if err != nil {
			return
		}
		seen[resolved.String()] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// countControls counts elements that either carry a non-blank ARIA role or
// are native interactive controls. Every matching element counts once,
// nested or not.
func countControls(doc *goquery.Document) int {
	count := 0
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if role, ok := s.Attr("role"); ok && strings.TrimSpace(role) != "" {
			count++
			return
		}
		if _, ok := nativeControls[goquery.NodeName(s)]; ok {
			count++
		}
	})
	return count
}

// resolveUpdated determines the page's last-modified date. The HTTP header
// wins when it parses; otherwise the meta tags are tried in order, with
// unparseable meta values kept verbatim rather than discarded.
func resolveUpdated(page *fetcher.Page) string {
	if lastMod := page.Header.Get("Last-Modified"); lastMod != "" {
		if t, err := http.ParseTime(lastMod); err == nil {
			return t.Format("2006-01-02")
		}
		log.Debug().
			Str("url", page.URL.String()).
			Str("last_modified", lastMod).
			Msg("Unparseable Last-Modified header, falling back to meta tags")
	}

	for _, lookup := range metaDateLookups {
		sel := "meta[" + lookup.attr + "='" + lookup.value + "']"
		content := strings.TrimSpace(page.Doc.Find(sel).First().AttrOr("content", ""))
		if content != "" {
			return util.NormaliseDate(content)
		}
	}

	return ""
}
