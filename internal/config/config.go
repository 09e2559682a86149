// Package config builds the immutable per-run crawl configuration from a
// TOML file or positional URL targets, with CLI flag overrides on top.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"sitelinks/internal/util"
)

// Mode selects between the two crawl behaviours.
type Mode int

const (
	// CrawlMode follows links from a single seed, bounded by depth and count.
	CrawlMode Mode = iota
	// ListMode fetches a fixed set of URLs with no link-following.
	ListMode
)

// Config is the crawl configuration for one run. Exactly one of StartURL
// and URLList is active; a non-blank URLList selects List Mode.
type Config struct {
	StartURL    string `toml:"startUrl"`
	URLList     string `toml:"urlList"`
	MaxURLs     int    `toml:"maxUrls"`
	CrawlDepth  int    `toml:"crawlDepth"`
	ParentDir   string `toml:"parentDir"`
	RobotFilter bool   `toml:"robotFilter"`
	UserAgent   string `toml:"userAgent"`
	Log         bool   `toml:"log"`
}

// Default returns a Config with the standard bounds applied.
func Default() *Config {
	return &Config{
		MaxURLs:    30,
		CrawlDepth: 3,
	}
}

// Load reads a TOML configuration file. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config file %s: %w", path, err)
	}
	return cfg, nil
}

// FromTargets builds a configuration from positional URL arguments: one
// URL selects Crawl Mode, two or more select List Mode.
func FromTargets(targets []string) *Config {
	cfg := Default()
	if len(targets) > 1 {
		cfg.URLList = strings.Join(targets, "\n")
		return cfg
	}
	cfg.StartURL = util.NormaliseStartURL(targets[0])
	return cfg
}

// Overrides carries CLI flag values that take precedence over the config
// file. Pointer fields distinguish "not given" from zero values; the
// boolean toggles only ever switch a behaviour on.
type Overrides struct {
	MaxLinks    *int
	CrawlDepth  *int
	ParentDir   *string
	RobotFilter bool
	UserAgent   *string
	Log         bool
}

// Apply merges flag overrides into the configuration.
func (c *Config) Apply(o Overrides) {
	if o.MaxLinks != nil {
		c.MaxURLs = *o.MaxLinks
	}
	if o.CrawlDepth != nil {
		c.CrawlDepth = *o.CrawlDepth
	}
	if o.ParentDir != nil {
		c.ParentDir = *o.ParentDir
	}
	if o.RobotFilter {
		c.RobotFilter = true
	}
	if o.UserAgent != nil {
		c.UserAgent = *o.UserAgent
	}
	if o.Log {
		c.Log = true
	}
}

// Mode reports whether this run is a list fetch or a link-following crawl.
func (c *Config) Mode() Mode {
	if strings.TrimSpace(c.URLList) != "" {
		return ListMode
	}
	return CrawlMode
}

// URLs returns the List Mode worklist, one entry per non-blank line.
// Duplicate entries are collapsed by the frontier, not here.
func (c *Config) URLs() []string {
	var urls []string
	for _, line := range strings.Split(c.URLList, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}

// Validate checks that the configuration describes a runnable crawl.
func (c *Config) Validate() error {
	hasStart := strings.TrimSpace(c.StartURL) != ""
	hasList := strings.TrimSpace(c.URLList) != ""

	if !hasStart && !hasList {
		return fmt.Errorf("one of startUrl or urlList is required")
	}
	if hasStart && hasList {
		return fmt.Errorf("startUrl and urlList are mutually exclusive")
	}
	if c.MaxURLs <= 0 {
		return fmt.Errorf("maxUrls must be positive, got %d", c.MaxURLs)
	}
	if c.CrawlDepth < 0 {
		return fmt.Errorf("crawlDepth cannot be negative, got %d", c.CrawlDepth)
	}
	return nil
}
