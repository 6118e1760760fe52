// Package source reads download tasks out of an Excel spreadsheet.
//
// The first sheet of the workbook is scanned. Row 1 must contain column
// headers; the configured URL column is located by exact header match.
// Rows with an empty URL cell are skipped before dispatch, so they never
// count as failures. Non-empty cells are passed through unvalidated and
// classified by the downloader, so a malformed URL still counts toward
// the consecutive-failure breaker.
package source
