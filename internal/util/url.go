package util

import (
	"net/url"
	"strings"
)

// NormaliseStartURL cleans up a user-supplied start URL, prefixing http://
// when the target looks like a bare www. host with no scheme.
func NormaliseStartURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(raw), "www.") {
		raw = "http://" + raw
	}
	return raw
}

// AllowedDomain derives the crawl domain from a URL by lowercasing the host
// and stripping a leading www. prefix.
func AllowedDomain(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// HostWithinDomain reports whether host is the given domain or a subdomain
// of it. A leading www. on the host is ignored.
func HostWithinDomain(host, domain string) bool {
	if domain == "" {
		return true
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return host == domain || strings.HasSuffix(host, "."+domain)
}
