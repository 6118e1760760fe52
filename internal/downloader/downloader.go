package downloader

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/countchrisdo/excel-url-downloader/internal/logging"
	"github.com/countchrisdo/excel-url-downloader/internal/progress"
)

// Options configures a run.
type Options struct {
	// Concurrency is the maximum number of downloads in flight at once.
	Concurrency int

	// Breaker gates dispatch. A nil breaker gets the default threshold.
	Breaker *Breaker

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Logger receives one record per completed task. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultFailureThreshold is used when no breaker is supplied.
const DefaultFailureThreshold = 10

// Run dispatches tasks to at most opts.Concurrency concurrent fetches and
// collects one Result per dispatched task. Dispatch stops early when the
// breaker trips or ctx is cancelled; tasks already in flight finish
// normally and their results are still recorded. Undispatched tasks yield
// no result.
//
// Results are returned sorted by spreadsheet row regardless of completion
// order. The second return value reports whether the breaker tripped.
func Run(ctx context.Context, fetcher *Fetcher, tasks []Task, opts Options) ([]Result, bool) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = NewBreaker(DefaultFailureThreshold)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	workers := opts.Concurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}

	jobs := make(chan Task)
	results := make(chan Result)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				// The trip may become visible between the feeder's check
				// and the channel handoff; abandon such tasks unfetched.
				if breaker.Tripped() {
					continue
				}

				if opts.Progress != nil {
					opts.Progress.FileStarted()
				}

				outcome := fetcher.Fetch(ctx, task)
				breaker.Observe(outcome.Failed())

				if outcome.Failed() {
					if opts.Progress != nil {
						opts.Progress.FileFailed()
					}
					log.Warn("download failed",
						slog.Int("row", task.Row),
						slog.String("url", logging.RedactURL(task.URL)),
						slog.String("kind", outcome.Kind.String()),
						slog.String("reason", outcome.Reason))
				} else {
					if opts.Progress != nil {
						opts.Progress.FileCompleted(outcome.Bytes)
					}
					log.Debug("download complete",
						slog.Int("row", task.Row),
						slog.String("url", logging.RedactURL(task.URL)),
						slog.String("path", outcome.Path),
						slog.Int64("bytes", outcome.Bytes))
				}

				results <- Result{Task: task, Outcome: outcome}
			}
		}()
	}

	// Feed tasks in order. The breaker is consulted before every dispatch;
	// once it trips, remaining tasks are abandoned without an outcome.
	go func() {
		defer close(jobs)
		for _, task := range tasks {
			if breaker.Tripped() {
				log.Warn("failure threshold exceeded, halting dispatch",
					slog.Int("consecutive_failures", breaker.Consecutive()))
				return
			}
			select {
			case jobs <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []Result
	for r := range results {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Task.Row < out[j].Task.Row
	})

	return out, breaker.Tripped()
}
