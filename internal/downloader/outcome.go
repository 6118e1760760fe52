package downloader

import "fmt"

// Task is one (row, URL, destination) triple representing a single file
// to fetch. Tasks are immutable once created.
type Task struct {
	Row  int    // spreadsheet row the URL came from
	URL  string // raw URL string, unvalidated
	Dest string // destination object name within the bucket
}

// Kind classifies the outcome of one download attempt.
type Kind int

const (
	KindSuccess Kind = iota
	KindInvalidURL
	KindNetworkError
	KindHTTPError
	KindWriteError
)

// String returns the snake_case name used in logs and the error log.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindInvalidURL:
		return "invalid_url"
	case KindNetworkError:
		return "network_error"
	case KindHTTPError:
		return "http_error"
	case KindWriteError:
		return "write_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the tagged result of attempting one task. Exactly one
// Outcome is produced per dispatched task.
type Outcome struct {
	Kind       Kind
	Bytes      int64  // bytes written, success only
	Path       string // destination object name, success only
	StatusCode int    // HTTP status, http_error only
	Reason     string // underlying failure detail, empty on success
}

// Failed reports whether the outcome is any failure variant.
func (o Outcome) Failed() bool {
	return o.Kind != KindSuccess
}

// Result pairs a dispatched task with its outcome.
type Result struct {
	Task    Task
	Outcome Outcome
}
