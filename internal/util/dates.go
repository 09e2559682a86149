package util

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first layout that fully parses the
// input wins. The numeric month/day layouts come before day/month on
// purpose, so an ambiguous string like "03/04/2025" always resolves as
// March 4th.
var dateLayouts = []string{
	"1/2/2006",                        // 3/18/2025
	"1-2-2006",                        // 03-18-2025
	"2006-01-02",                      // 2025-03-18
	"2/1/2006",                        // 18/03/2025
	"2-1-2006",                        // 18-03-2025
	"January 2, 2006",                 // March 18, 2025
	"Jan 2, 2006",                     // Mar 18, 2025
	"Mon, 2 Jan 2006 15:04:05 MST",    // Tue, 18 Mar 2025 00:00:00 GMT
	"Mon, 2 Jan 2006 15:04:05 -0700",  // Tue, 18 Mar 2025 00:00:00 +0000
	"2006-01-02T15:04:05-0700",        // 2025-03-18T12:34:56+0000
	"2006-01-02T15:04:05Z07:00",       // 2025-03-18T12:34:56Z
}

// NormaliseDate parses a free-form date string against a list of known
// formats and returns it as YYYY-MM-DD. Strings that match no format are
// returned unchanged, so a caller never loses whatever signal was present.
// Empty (or all-whitespace) input returns "".
func NormaliseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return raw
}
