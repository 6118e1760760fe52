// Package report turns a run's results into the JSON error log and the
// console summary.
//
// The error log keeps the shape downstream tooling expects: an
// invalid_urls bucket and a download_errors bucket, plus per-run counts.
// The console summary states totals, failures by kind, and whether the
// run was halted early by the failure breaker.
package report
