package runlog

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCapturesZerologEvents(t *testing.T) {
	rec := New()
	logger := zerolog.New(rec)

	logger.Info().Str("url", "https://example.com").Msg("fetched page")
	logger.Warn().Msg("fetch failed")

	lines := rec.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "fetched page")
	assert.Contains(t, lines[0], "https://example.com")
	assert.Contains(t, lines[1], "fetch failed")
}

func TestRecorderLinesSnapshot(t *testing.T) {
	rec := New()
	_, err := rec.Write([]byte("first\n"))
	require.NoError(t, err)

	lines := rec.Lines()
	_, err = rec.Write([]byte("second\n"))
	require.NoError(t, err)

	assert.Len(t, lines, 1, "earlier snapshot should not grow")
	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, "first", lines[0])
}

func TestRecorderConcurrentWrites(t *testing.T) {
	rec := New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = rec.Write([]byte("line\n"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, rec.Len())
}
