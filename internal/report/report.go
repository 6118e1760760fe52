package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/countchrisdo/excel-url-downloader/internal/downloader"
	"github.com/countchrisdo/excel-url-downloader/internal/progress"
)

// Entry is one failed task in the error log.
type Entry struct {
	Row    int    `json:"row"`
	URL    string `json:"url"`
	Kind   string `json:"kind"`
	Status int    `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Log is the JSON document written after every run with at least one
// failure. Invalid URLs are kept apart from download errors, matching
// the layout the tool has always produced.
type Log struct {
	RunID          string  `json:"run_id"`
	Attempted      int     `json:"attempted"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	Skipped        int     `json:"skipped,omitempty"`
	Halted         bool    `json:"halted"`
	InvalidURLs    []Entry `json:"invalid_urls"`
	DownloadErrors []Entry `json:"download_errors"`
}

// Report aggregates the results of one run.
type Report struct {
	RunID   string
	Results []downloader.Result

	// Planned is the number of tasks read from the spreadsheet; tasks
	// never dispatched because the breaker tripped count as skipped.
	Planned int

	// Halted records whether the breaker tripped.
	Halted bool
}

// New builds a Report with a fresh run id.
func New(results []downloader.Result, planned int, halted bool) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Results: results,
		Planned: planned,
		Halted:  halted,
	}
}

// Succeeded returns the number of successful outcomes.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if !res.Outcome.Failed() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed outcomes.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Skipped returns the number of tasks never dispatched.
func (r *Report) Skipped() int {
	return r.Planned - len(r.Results)
}

// TotalBytes returns the bytes written across all successes.
func (r *Report) TotalBytes() int64 {
	var n int64
	for _, res := range r.Results {
		n += res.Outcome.Bytes
	}
	return n
}

// failuresByKind counts failed outcomes per kind. The switch is
// exhaustive so a new outcome kind cannot silently fall through.
func (r *Report) failuresByKind() map[downloader.Kind]int {
	counts := make(map[downloader.Kind]int)
	for _, res := range r.Results {
		switch res.Outcome.Kind {
		case downloader.KindSuccess:
			// not a failure
		case downloader.KindInvalidURL,
			downloader.KindNetworkError,
			downloader.KindHTTPError,
			downloader.KindWriteError:
			counts[res.Outcome.Kind]++
		default:
			panic(fmt.Sprintf("report: unhandled outcome kind %d", res.Outcome.Kind))
		}
	}
	return counts
}

// BuildLog assembles the error log document.
func (r *Report) BuildLog() Log {
	log := Log{
		RunID:          r.RunID,
		Attempted:      len(r.Results),
		Succeeded:      r.Succeeded(),
		Failed:         r.Failed(),
		Skipped:        r.Skipped(),
		Halted:         r.Halted,
		InvalidURLs:    []Entry{},
		DownloadErrors: []Entry{},
	}

	for _, res := range r.Results {
		if !res.Outcome.Failed() {
			continue
		}
		entry := Entry{
			Row:    res.Task.Row,
			URL:    res.Task.URL,
			Kind:   res.Outcome.Kind.String(),
			Status: res.Outcome.StatusCode,
			Reason: res.Outcome.Reason,
		}
		if res.Outcome.Kind == downloader.KindInvalidURL {
			log.InvalidURLs = append(log.InvalidURLs, entry)
		} else {
			log.DownloadErrors = append(log.DownloadErrors, entry)
		}
	}

	return log
}

// WriteLog writes the error log as indented JSON to path.
func (r *Report) WriteLog(path string) error {
	data, err := json.MarshalIndent(r.BuildLog(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal error log: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write error log: %w", err)
	}
	return nil
}

// PrintSummary writes the human-readable run summary to w.
func (r *Report) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "[exceldl] Run %s\n", r.RunID)
	fmt.Fprintf(w, "[exceldl] Attempted: %d | Succeeded: %d | Failed: %d | Downloaded: %s\n",
		len(r.Results), r.Succeeded(), r.Failed(), progress.FormatBytes(r.TotalBytes()))

	counts := r.failuresByKind()
	if len(counts) > 0 {
		kinds := make([]downloader.Kind, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			fmt.Fprintf(w, "[exceldl]   %s: %d\n", k, counts[k])
		}
	}

	if r.Halted {
		fmt.Fprintf(w, "[exceldl] Run halted early: consecutive failures exceeded the threshold (%d tasks skipped)\n",
			r.Skipped())
	}
}
