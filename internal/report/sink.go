// Package report accumulates page records during a crawl and writes the
// CSV report, plus the optional run log, when the crawl finishes.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"sitelinks/internal/processor"
)

// utf8BOM is prepended to output files so spreadsheet tools detect UTF-8.
const utf8BOM = "\xef\xbb\xbf"

// DefaultBaseName is used when the first page has no usable title.
const DefaultBaseName = "output"

var csvHeader = []string{"url", "title", "linkCount", "controlCount", "byteCount", "updated"}

// Sink collects page records in processing order and flushes them to a
// uniquely named CSV file at the end of the run.
type Sink struct {
	mu      sync.Mutex
	records []processor.PageRecord
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a record. Safe for concurrent use.
func (s *Sink) Add(rec processor.PageRecord) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

// Count reports how many records have been collected.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a snapshot of the collected records.
func (s *Sink) Records() []processor.PageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]processor.PageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// BaseName derives the output base name from the first record's title,
// stripped of filesystem-unsafe characters.
func (s *Sink) BaseName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := ""
	if len(s.records) > 0 {
		title = s.records[0].Title
	}
	return SanitiseBaseName(title)
}

// SanitiseBaseName removes characters that are unsafe in file names and
// falls back to DefaultBaseName for blank titles.
func SanitiseBaseName(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, strings.TrimSpace(title))

	if cleaned == "" {
		return DefaultBaseName
	}
	return cleaned
}

// Flush writes the collected records as a CSV file under dir (the current
// directory when dir is empty) and prints the final summary line. The file
// name is <base>.csv, or <base>-NN.csv when that name is taken.
func (s *Sink) Flush(dir string) (string, error) {
	records := s.Records()
	base := s.BaseName()

	path := uniquePath(dir, base, ".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write report header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.URL,
			rec.Title,
			strconv.Itoa(rec.LinkCount),
			strconv.Itoa(rec.ControlCount),
			strconv.Itoa(rec.ByteCount),
			rec.Updated,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}

	fmt.Printf("Saved %d links to %s\n", len(records), filepath.Base(path))

	log.Info().
		Int("records", len(records)).
		Str("file", path).
		Msg("Report written")

	return path, nil
}

// WriteRunLog writes the captured log lines to <base>.log next to the
// report. The base name is the unsuffixed root, so reruns overwrite the
// log rather than accumulating numbered copies.
func (s *Sink) WriteRunLog(dir string, lines []string) (string, error) {
	path := filepath.Join(dir, s.BaseName()+".log")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return "", fmt.Errorf("write log file: %w", err)
	}
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			return "", fmt.Errorf("write log file: %w", err)
		}
	}

	return path, nil
}

// uniquePath picks the first non-colliding file name by appending a
// zero-padded numeric suffix (-01, -02, ...) while the candidate exists.
func uniquePath(dir, base, ext string) string {
	candidate := filepath.Join(dir, base+ext)
	for suffix := 1; ; suffix++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%02d%s", base, suffix, ext))
	}
}
