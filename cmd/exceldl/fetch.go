package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/countchrisdo/excel-url-downloader/internal/config"
	"github.com/countchrisdo/excel-url-downloader/internal/downloader"
	dlhttp "github.com/countchrisdo/excel-url-downloader/internal/http"
	"github.com/countchrisdo/excel-url-downloader/internal/logging"
	"github.com/countchrisdo/excel-url-downloader/internal/progress"
	"github.com/countchrisdo/excel-url-downloader/internal/report"
	"github.com/countchrisdo/excel-url-downloader/internal/source"
)

// runFetch reads the spreadsheet, downloads every URL in the configured
// column concurrently, writes the error log, and prints a summary.
func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	excelFile := fs.String("excel", "", "Path to source spreadsheet")
	urlColumn := fs.String("column", "", "Header of the URL column")
	output := fs.String("output", "", "Output folder or bucket URL")
	workers := fs.Int("workers", 0, "Max concurrent downloads")
	threshold := fs.Int("threshold", 0, "Consecutive failures tolerated before halting")
	timeout := fs.Duration("timeout", 0, "Per-request timeout")
	showProgress := fs.Bool("progress", false, "Show progress output")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: exceldl fetch [options]

Download every URL in the spreadsheet's URL column into the output folder.
Flags override environment variables (EXCELDL_ prefix), which override the
config file.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	// A .env file is optional; absence is not an error.
	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return ExitConfigError
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		return ExitConfigError
	}
	cfg = cfg.Merge(config.Config{
		ExcelFile:        *excelFile,
		URLColumn:        *urlColumn,
		OutputFolder:     *output,
		MaxConcurrent:    *workers,
		FailureThreshold: *threshold,
		Timeout:          *timeout,
		Progress:         *showProgress,
		LogLevel:         *logLevel,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	log := logging.Init(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// In-flight downloads are allowed to finish; the feeder stops
	// dispatching once the context is cancelled.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[exceldl] Received interrupt, finishing in-flight downloads...")
		cancel()
	}()

	tasks, err := source.Read(cfg.ExcelFile, cfg.URLColumn, cfg.DefaultExtension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading spreadsheet: %v\n", err)
		return ExitSourceError
	}
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "[exceldl] No URLs found, nothing to do")
		return ExitSuccess
	}

	bucketURL, err := cfg.BucketURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output bucket: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	client := dlhttp.NewClient(dlhttp.Options{
		MaxIdleConnsPerHost: cfg.MaxConcurrent * 2,
		Timeout:             cfg.Timeout,
		UserAgent:           cfg.UserAgent,
		Headers:             cfg.Headers,
	})

	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			TotalFiles: len(tasks),
			Workers:    cfg.MaxConcurrent,
			Source:     cfg.ExcelFile,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	started := time.Now()
	results, tripped := downloader.Run(ctx, downloader.NewFetcher(client, bucket), tasks, downloader.Options{
		Concurrency: cfg.MaxConcurrent,
		Breaker:     downloader.NewBreaker(cfg.FailureThreshold),
		Progress:    reporter,
		Logger:      log,
	})

	if reporter != nil {
		reporter.Stop()
	}

	rep := report.New(results, len(tasks), tripped)
	rep.PrintSummary(os.Stderr)
	fmt.Fprintf(os.Stderr, "[exceldl] Elapsed: %s\n", time.Since(started).Round(time.Millisecond))

	if err := rep.WriteLog(cfg.ErrorLog); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing error log: %v\n", err)
		return ExitGeneralError
	}

	if tripped {
		fmt.Fprintln(os.Stderr, "[exceldl] Run halted by failure breaker")
		return ExitHalted
	}
	return ExitSuccess
}
