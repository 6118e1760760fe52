package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	_ "gocloud.dev/blob/memblob"
)

func TestRunAllSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "content of %s", r.URL.Path)
	}))
	defer server.Close()

	fetcher, bucket := newTestFetcher(t)
	ctx := context.Background()

	var tasks []Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/file%d.jpg", server.URL, i),
			Dest: fmt.Sprintf("file%d.jpg", i),
		})
	}

	results, tripped := Run(ctx, fetcher, tasks, Options{Concurrency: 2})

	if tripped {
		t.Error("breaker tripped on all-success run")
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Outcome.Kind != KindSuccess {
			t.Errorf("task %d: expected success, got %s (%s)", i, r.Outcome.Kind, r.Outcome.Reason)
		}
		if exists, _ := bucket.Exists(ctx, r.Task.Dest); !exists {
			t.Errorf("task %d: object %s missing", i, r.Task.Dest)
		}
	}
}

func TestRunResultsSortedByRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	fetcher, _ := newTestFetcher(t)

	var tasks []Task
	for i := 0; i < 20; i++ {
		tasks = append(tasks, Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/f%d.jpg", server.URL, i),
			Dest: fmt.Sprintf("f%d.jpg", i),
		})
	}

	results, _ := Run(context.Background(), fetcher, tasks, Options{Concurrency: 8})

	if len(results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Task.Row < results[i-1].Task.Row {
			t.Fatalf("results out of row order at %d: %d after %d",
				i, results[i].Task.Row, results[i-1].Task.Row)
		}
	}
}

func TestRunConcurrencyBound(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			observed := maxInFlight.Load()
			if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
				break
			}
		}
		w.Write([]byte("x"))
	}))
	defer server.Close()

	fetcher, _ := newTestFetcher(t)

	var tasks []Task
	for i := 0; i < 12; i++ {
		tasks = append(tasks, Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/f%d.jpg", server.URL, i),
			Dest: fmt.Sprintf("f%d.jpg", i),
		})
	}

	Run(context.Background(), fetcher, tasks, Options{Concurrency: 3})

	if got := maxInFlight.Load(); got > 3 {
		t.Errorf("concurrency bound violated: %d requests in flight", got)
	}
}

func TestRunLimitExceedsTaskCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	fetcher, _ := newTestFetcher(t)

	tasks := []Task{
		{Row: 2, URL: server.URL + "/a.jpg", Dest: "a.jpg"},
		{Row: 3, URL: server.URL + "/b.jpg", Dest: "b.jpg"},
	}

	results, tripped := Run(context.Background(), fetcher, tasks, Options{Concurrency: 64})

	if tripped {
		t.Error("unexpected trip")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestRunBreakerHaltsDispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher, _ := newTestFetcher(t)

	var tasks []Task
	for i := 0; i < 10; i++ {
		tasks = append(tasks, Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/f%d.jpg", server.URL, i),
			Dest: fmt.Sprintf("f%d.jpg", i),
		})
	}

	// threshold 2, sequential: the third 404 trips the breaker and nothing
	// past it is fetched.
	results, tripped := Run(context.Background(), fetcher, tasks, Options{
		Concurrency: 1,
		Breaker:     NewBreaker(2),
	})

	if !tripped {
		t.Fatal("expected breaker to trip")
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results before halt, got %d", len(results))
	}
	for _, r := range results {
		if r.Outcome.Kind != KindHTTPError {
			t.Errorf("expected http_error, got %s", r.Outcome.Kind)
		}
	}
}

func TestRunInvalidURLCountsTowardBreaker(t *testing.T) {
	fetcher, _ := newTestFetcher(t)

	tasks := []Task{
		{Row: 2, URL: "not a url", Dest: "a.jpg"},
		{Row: 3, URL: "also not a url", Dest: "b.jpg"},
		{Row: 4, URL: "still not a url", Dest: "c.jpg"},
	}

	results, tripped := Run(context.Background(), fetcher, tasks, Options{
		Concurrency: 1,
		Breaker:     NewBreaker(1),
	})

	if !tripped {
		t.Fatal("expected breaker to trip on invalid URLs")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results before halt, got %d", len(results))
	}
	for _, r := range results {
		if r.Outcome.Kind != KindInvalidURL {
			t.Errorf("expected invalid_url, got %s", r.Outcome.Kind)
		}
	}
}

func TestRunSuccessResetsBreaker(t *testing.T) {
	var n atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// alternate failure and success so consecutive failures never
		// exceed the threshold
		if n.Add(1)%2 == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("x"))
	}))
	defer server.Close()

	fetcher, _ := newTestFetcher(t)

	var tasks []Task
	for i := 0; i < 8; i++ {
		tasks = append(tasks, Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/f%d.jpg", server.URL, i),
			Dest: fmt.Sprintf("f%d.jpg", i),
		})
	}

	results, tripped := Run(context.Background(), fetcher, tasks, Options{
		Concurrency: 1,
		Breaker:     NewBreaker(1),
	})

	if tripped {
		t.Error("breaker tripped despite interleaved successes")
	}
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
}

func TestRunEmptyTasks(t *testing.T) {
	fetcher, _ := newTestFetcher(t)

	results, tripped := Run(context.Background(), fetcher, nil, Options{Concurrency: 4})
	if tripped {
		t.Error("unexpected trip")
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRunContextCancelStopsDispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	fetcher, _ := newTestFetcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var tasks []Task
	for i := 0; i < 50; i++ {
		tasks = append(tasks, Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/f%d.jpg", server.URL, i),
			Dest: fmt.Sprintf("f%d.jpg", i),
		})
	}

	results, _ := Run(ctx, fetcher, tasks, Options{Concurrency: 2})

	// a cancelled context stops the feeder; anything dispatched first
	// fails fast with a network error
	if len(results) == 50 {
		t.Error("expected cancelled run to stop dispatch early")
	}
}
