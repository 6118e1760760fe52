package downloader

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"gocloud.dev/blob"

	dlhttp "github.com/countchrisdo/excel-url-downloader/internal/http"
)

// maxDrain caps how much of a failed response body is read to keep the
// connection reusable.
const maxDrain = 64 * 1024

// Fetcher downloads single URLs into a bucket.
type Fetcher struct {
	client *dlhttp.Client
	bucket *blob.Bucket
}

// NewFetcher creates a Fetcher writing through the given client and bucket.
func NewFetcher(client *dlhttp.Client, bucket *blob.Bucket) *Fetcher {
	return &Fetcher{client: client, bucket: bucket}
}

// Fetch performs one download attempt and classifies it. Malformed URLs
// are rejected before any network call. Non-2xx responses write nothing.
// On success exactly one object is created (or overwritten) at task.Dest;
// a failed write commits nothing, so no partial object is left behind.
func (f *Fetcher) Fetch(ctx context.Context, task Task) Outcome {
	if reason, ok := validateURL(task.URL); !ok {
		return Outcome{Kind: KindInvalidURL, Reason: reason}
	}

	resp, err := f.client.Get(ctx, task.URL)
	if err != nil {
		return Outcome{Kind: KindNetworkError, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		return Outcome{
			Kind:       KindHTTPError,
			StatusCode: resp.StatusCode,
			Reason:     resp.Status,
		}
	}

	return f.write(ctx, task, resp.Body)
}

// write streams body into the bucket. The blob writer only commits on a
// successful Close; cancelling the write context on error aborts the
// commit, which is what guarantees no partial file on disk.
func (f *Fetcher) write(ctx context.Context, task Task, body io.Reader) Outcome {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := f.bucket.NewWriter(wctx, task.Dest, nil)
	if err != nil {
		return Outcome{Kind: KindWriteError, Reason: fmt.Sprintf("open writer: %v", err)}
	}

	src := &readTracker{r: body}
	n, err := io.Copy(w, src)
	if err != nil {
		cancel()
		w.Close()
		if src.err != nil {
			return Outcome{Kind: KindNetworkError, Reason: fmt.Sprintf("read body: %v", src.err)}
		}
		return Outcome{Kind: KindWriteError, Reason: err.Error()}
	}

	if err := w.Close(); err != nil {
		return Outcome{Kind: KindWriteError, Reason: fmt.Sprintf("commit: %v", err)}
	}

	return Outcome{Kind: KindSuccess, Bytes: n, Path: task.Dest}
}

// validateURL checks the URL syntactically: it must parse and carry an
// http or https scheme with a host.
func validateURL(raw string) (reason string, ok bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err.Error(), false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Sprintf("unsupported scheme %q", parsed.Scheme), false
	}
	if parsed.Host == "" {
		return "missing host", false
	}
	return "", true
}

// readTracker records the first read error so copy failures can be
// attributed to the network side rather than the writer.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
