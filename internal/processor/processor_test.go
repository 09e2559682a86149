package processor

import (
	"bytes"
	"net/http"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitelinks/internal/fetcher"
)

func testPage(t *testing.T, pageURL, html string, header http.Header) *fetcher.Page {
	t.Helper()

	u, err := url.Parse(pageURL)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	require.NoError(t, err)

	if header == nil {
		header = http.Header{}
	}
	return &fetcher.Page{
		URL:        u,
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       []byte(html),
		Doc:        doc,
	}
}

func TestProcessBasicMetrics(t *testing.T) {
	html := `<html><head><title>Example Page</title></head><body>
		<a href="/a">a</a>
		<a href="/b">b</a>
		<a href="/a">duplicate</a>
		<a href="https://other.com/c">c</a>
		<a href="mailto:someone@example.com">mail</a>
		<a href="javascript:void(0)">js</a>
		<button>Go</button>
		<input type="text">
		<div role="navigation"><select><option>x</option></select></div>
		<span role="  ">blank role</span>
	</body></html>`

	page := testPage(t, "http://example.com/start", html, nil)
	rec, links := Process(page)

	assert.Equal(t, "http://example.com/start", rec.URL)
	assert.Equal(t, "Example Page", rec.Title)

	// Every href counts once resolved, whatever its scheme; only the
	// duplicate /a collapses.
	assert.Equal(t, 5, rec.LinkCount)
	assert.ElementsMatch(t, []string{
		"http://example.com/a",
		"http://example.com/b",
		"https://other.com/c",
		"mailto:someone@example.com",
		"javascript:void(0)",
	}, links)

	// button + input + select + role=navigation div; blank role ignored.
	assert.Equal(t, 4, rec.ControlCount)
	assert.Equal(t, len(html), rec.ByteCount)
	assert.Equal(t, "", rec.Updated)
}

func TestExtractLinksKeepsEveryHref(t *testing.T) {
	html := `<html><body>
		<a href="">self</a>
		<a href="mailto:x@example.com">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="/a">a</a>
	</body></html>`

	rec, links := Process(testPage(t, "http://example.com/start", html, nil))

	// An empty href resolves to the page itself and still lands in the set.
	assert.Equal(t, 4, rec.LinkCount)
	assert.ElementsMatch(t, []string{
		"http://example.com/start",
		"mailto:x@example.com",
		"javascript:void(0)",
		"http://example.com/a",
	}, links)
}

func TestProcessTitleKeptVerbatim(t *testing.T) {
	html := "<html><head><title>  Padded Title \n</title></head><body></body></html>"
	rec, _ := Process(testPage(t, "http://example.com/", html, nil))

	assert.Equal(t, "  Padded Title \n", rec.Title)
}

func TestProcessMissingTitle(t *testing.T) {
	page := testPage(t, "http://example.com/", `<html><body><p>no title</p></body></html>`, nil)
	rec, links := Process(page)

	assert.Equal(t, "", rec.Title)
	assert.Equal(t, 0, rec.LinkCount)
	assert.Empty(t, links)
}

func TestProcessNestedControlsCountIndividually(t *testing.T) {
	html := `<html><body><div role="dialog"><button role="tab">t</button><input></div></body></html>`
	page := testPage(t, "http://example.com/", html, nil)
	rec, _ := Process(page)

	// div(role) + button(role wins, counted once) + input.
	assert.Equal(t, 3, rec.ControlCount)
}

func TestResolveUpdatedHeaderWins(t *testing.T) {
	header := http.Header{}
	header.Set("Last-Modified", "Tue, 18 Mar 2025 00:00:00 GMT")
	html := `<html><head><meta name="last-modified" content="01/01/2000"></head></html>`

	rec, _ := Process(testPage(t, "http://example.com/", html, header))
	assert.Equal(t, "2025-03-18", rec.Updated)
}

func TestResolveUpdatedBadHeaderFallsBackToMeta(t *testing.T) {
	header := http.Header{}
	header.Set("Last-Modified", "garbage value")
	html := `<html><head><meta property="article:modified_time" content="2025-03-18T12:34:56Z"></head></html>`

	rec, _ := Process(testPage(t, "http://example.com/", html, header))
	assert.Equal(t, "2025-03-18", rec.Updated)
}

func TestResolveUpdatedMetaOrder(t *testing.T) {
	html := `<html><head>
		<meta name="modified" content="March 1, 2020">
		<meta name="last-modified" content="March 18, 2025">
	</head></html>`

	rec, _ := Process(testPage(t, "http://example.com/", html, nil))
	assert.Equal(t, "2025-03-18", rec.Updated)
}

func TestResolveUpdatedUnparseableMetaKeptVerbatim(t *testing.T) {
	html := `<html><head><meta name="last-modified" content="sometime last week"></head></html>`

	rec, _ := Process(testPage(t, "http://example.com/", html, nil))
	assert.Equal(t, "sometime last week", rec.Updated)
}
