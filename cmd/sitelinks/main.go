// sitelinks crawls a website or a fixed URL list and writes a CSV report
// of per-page structural metrics.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sitelinks/internal/config"
	"sitelinks/internal/crawler"
	"sitelinks/internal/report"
	"sitelinks/internal/runlog"
)

var cli struct {
	Targets     []string `arg:"" name:"target" help:"TOML config file or URL(s) to crawl. Multiple URLs select List Mode."`
	MaxLinks    *int     `name:"maxLinks" help:"Maximum number of URLs to crawl (default 30)."`
	CrawlDepth  *int     `name:"crawlDepth" help:"Maximum crawl depth (default 3)."`
	ParentDir   *string  `name:"parentDir" help:"Only follow links whose path starts with this prefix."`
	RobotFilter bool     `name:"robotFilter" help:"Obey robots.txt."`
	UserAgent   *string  `name:"userAgent" help:"Custom user agent string added to the rotation pool."`
	Log         bool     `name:"log" help:"Write a run log next to the report."`
}

func main() {
	_ = godotenv.Load(".env.local", ".env")

	kong.Parse(&cli,
		kong.Name("sitelinks"),
		kong.Description("Crawl a website and produce a CSV report of page metrics."),
	)

	cfg := buildConfig()

	recorder := setupLogging(cfg.Log)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := report.NewSink()
	opts := crawler.DefaultOptions()
	engine := crawler.New(cfg, opts, sink)

	if err := engine.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("Crawl failed")
		}
		log.Warn().Msg("Crawl interrupted, flushing collected records")
	}

	if _, err := sink.Flush(opts.OutputDir); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV file")
	}

	if cfg.Log && recorder != nil {
		if _, err := sink.WriteRunLog(opts.OutputDir, recorder.Lines()); err != nil {
			log.Error().Err(err).Msg("Failed to write log file")
		}
	}
}

// buildConfig resolves the run configuration: a TOML file when the first
// target names one, positional URLs otherwise, with flag overrides on top.
// A config file that cannot be loaded is fatal before any crawl starts.
func buildConfig() *config.Config {
	var cfg *config.Config
	if info, err := os.Stat(cli.Targets[0]); err == nil && !info.IsDir() {
		cfg, err = config.Load(cli.Targets[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config file")
		}
	} else {
		cfg = config.FromTargets(cli.Targets)
	}

	cfg.Apply(config.Overrides{
		MaxLinks:    cli.MaxLinks,
		CrawlDepth:  cli.CrawlDepth,
		ParentDir:   cli.ParentDir,
		RobotFilter: cli.RobotFilter,
		UserAgent:   cli.UserAgent,
		Log:         cli.Log,
	})
	return cfg
}

// setupLogging configures the global logger. Without run logging only
// errors reach the console; with it, everything from debug up is mirrored
// into an in-memory recorder that is written out at the end of the run.
func setupLogging(runLog bool) *runlog.Recorder {
	console := zerolog.ConsoleWriter{Out: os.Stderr}

	level := zerolog.ErrorLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}

	var recorder *runlog.Recorder
	var writer zerolog.LevelWriter
	if runLog {
		level = zerolog.DebugLevel
		recorder = runlog.New()
		writer = zerolog.MultiLevelWriter(
			console,
			zerolog.ConsoleWriter{Out: recorder, NoColor: true},
		)
	} else {
		writer = zerolog.MultiLevelWriter(console)
	}

	runID := uuid.New().String()[:8]
	log.Logger = zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()

	return recorder
}
