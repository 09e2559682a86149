package crawler

import (
	"io"
	"os"
	"time"
)

// Options tunes the engine's scheduling behaviour. The crawl bounds
// themselves live in the run configuration.
type Options struct {
	Concurrency int           // Maximum in-flight fetches
	Timeout     time.Duration // Per-request timeout
	Delay       time.Duration // Base politeness delay between same-host requests
	Console     io.Writer     // Destination for the console protocol lines
	OutputDir   string        // Directory for the report and log files
}

// DefaultOptions returns the standard engine tuning.
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		Timeout:     30 * time.Second,
		Delay:       time.Second,
		Console:     os.Stdout,
	}
}
