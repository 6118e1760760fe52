// Package downloader fetches a list of URLs concurrently into a bucket.
//
// This package coordinates between the HTTP client and a gocloud blob
// bucket. It manages the worker pool, classifies every attempt into a
// tagged Outcome, and stops dispatching new work once the consecutive-
// failure breaker trips.
//
// # Usage
//
//	results, tripped := downloader.Run(ctx, fetcher, tasks, downloader.Options{
//	    Concurrency: 4,
//	    Breaker:     downloader.NewBreaker(10),
//	})
//
// # Worker Pool
//
// Workers receive tasks from a channel, fetch each URL, and stream the
// response into the bucket. At most Concurrency fetches are in flight at
// any time. Completion order is unordered; results are sorted back into
// spreadsheet row order before they are returned.
//
// # Failure Breaker
//
// Every outcome is fed to the Breaker. Once consecutive failures strictly
// exceed the threshold, no further tasks are dispatched. Tasks already in
// flight finish normally and their outcomes are still recorded.
package downloader
