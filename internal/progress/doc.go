// Package progress provides progress reporting for download runs.
//
// This package outputs human-readable progress information to stderr,
// including file counts, bytes transferred, and throughput.
//
// # Usage
//
//	reporter := progress.NewReporter(Options{
//	    TotalFiles: len(tasks),
//	    Workers:    cfg.MaxConcurrent,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as files complete
//	reporter.FileCompleted(bytesWritten)
//
// # Output Format
//
//	[exceldl] Downloading 120 files | Workers: 4
//	[exceldl] Progress: 37/120 files | 2 failed | 4 in-flight | 14.2 MB | 1.1 MB/s
package progress
