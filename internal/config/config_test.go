package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crawl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `startUrl = "http://example.com"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com", cfg.StartURL)
	assert.Equal(t, 30, cfg.MaxURLs)
	assert.Equal(t, 3, cfg.CrawlDepth)
	assert.False(t, cfg.RobotFilter)
	assert.False(t, cfg.Log)
	assert.Equal(t, CrawlMode, cfg.Mode())
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
startUrl = "http://example.com/docs"
maxUrls = 10
crawlDepth = 2
parentDir = "/docs"
robotFilter = true
userAgent = "MyBot/1.0"
log = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.MaxURLs)
	assert.Equal(t, 2, cfg.CrawlDepth)
	assert.Equal(t, "/docs", cfg.ParentDir)
	assert.True(t, cfg.RobotFilter)
	assert.Equal(t, "MyBot/1.0", cfg.UserAgent)
	assert.True(t, cfg.Log)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeConfig(t, `startUrl = [not toml`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestFromTargetsSingleURL(t *testing.T) {
	cfg := FromTargets([]string{"www.example.com"})

	assert.Equal(t, "http://www.example.com", cfg.StartURL)
	assert.Equal(t, CrawlMode, cfg.Mode())
	require.NoError(t, cfg.Validate())
}

func TestFromTargetsMultipleURLsSelectListMode(t *testing.T) {
	cfg := FromTargets([]string{"http://a.com", "http://b.com"})

	assert.Equal(t, ListMode, cfg.Mode())
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.URLs())
	require.NoError(t, cfg.Validate())
}

func TestURLListFromFileSelectsListMode(t *testing.T) {
	path := writeConfig(t, "urlList = \"http://a.com\\nhttp://b.com\\n\\n\"")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ListMode, cfg.Mode())
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.URLs())
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.StartURL = "http://example.com"

	maxLinks := 5
	depth := 1
	parent := "/docs"
	agent := "Override/1.0"
	cfg.Apply(Overrides{
		MaxLinks:    &maxLinks,
		CrawlDepth:  &depth,
		ParentDir:   &parent,
		RobotFilter: true,
		UserAgent:   &agent,
		Log:         true,
	})

	assert.Equal(t, 5, cfg.MaxURLs)
	assert.Equal(t, 1, cfg.CrawlDepth)
	assert.Equal(t, "/docs", cfg.ParentDir)
	assert.True(t, cfg.RobotFilter)
	assert.Equal(t, "Override/1.0", cfg.UserAgent)
	assert.True(t, cfg.Log)
}

func TestApplyEmptyOverridesKeepsConfig(t *testing.T) {
	cfg := Default()
	cfg.StartURL = "http://example.com"
	cfg.RobotFilter = true

	cfg.Apply(Overrides{})

	assert.Equal(t, 30, cfg.MaxURLs)
	assert.True(t, cfg.RobotFilter, "unset flags must not clear config values")
}

func TestValidateRejectsBothModes(t *testing.T) {
	cfg := Default()
	cfg.StartURL = "http://example.com"
	cfg.URLList = "http://a.com"

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNeitherMode(t *testing.T) {
	assert.Error(t, Default().Validate())
}
