// Package http provides the HTTP client used for downloads.
//
// This package handles:
//   - Connection pooling sized to the worker count
//   - A fixed per-request timeout
//   - Static headers and the user-agent on every request
//
// There is deliberately no retry here: failed downloads are recorded and
// feed the consecutive-failure breaker instead of being retried.
//
// # Usage
//
//	client := http.NewClient(Options{
//	    Timeout:   30 * time.Second,
//	    UserAgent: "exceldl/1.0",
//	})
//
//	resp, err := client.Get(ctx, url)
//	defer resp.Body.Close()
package http
