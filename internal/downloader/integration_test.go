//go:build integration

package downloader_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/countchrisdo/excel-url-downloader/internal/downloader"
	dlhttp "github.com/countchrisdo/excel-url-downloader/internal/http"
	"github.com/countchrisdo/excel-url-downloader/internal/testutils"
)

// TestDownloadToS3 runs the pool against a Minio-backed bucket, covering
// the same path a run with an s3:// output folder takes.
func TestDownloadToS3(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	files := []testutils.TestFile{
		{Name: "a.jpg", Data: testutils.GenerateTestData(t, 256*1024)},
		{Name: "b.png", Data: testutils.GenerateTestData(t, 1024*1024)},
		{Name: "c.gif", Data: testutils.GenerateTestData(t, 4*1024)},
	}
	server := testutils.StartTestHTTPServer(t, files)

	env := testutils.StartMinioContainer(t, ctx, "exceldl-test")
	defer env.Close(ctx)

	bucket, err := env.OpenBucket(ctx)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	tasks := make([]downloader.Task, len(files))
	for i, f := range files {
		tasks[i] = downloader.Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/%s", server.URL, f.Name),
			Dest: f.Name,
		}
	}

	client := dlhttp.NewClient(dlhttp.DefaultOptions())
	fetcher := downloader.NewFetcher(client, bucket)

	results, tripped := downloader.Run(ctx, fetcher, tasks, downloader.Options{
		Concurrency: 2,
		Breaker:     downloader.NewBreaker(downloader.DefaultFailureThreshold),
	})
	if tripped {
		t.Fatal("breaker tripped on an all-success run")
	}
	if len(results) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(results))
	}

	for i, res := range results {
		if res.Outcome.Kind != downloader.KindSuccess {
			t.Fatalf("task %d failed: %+v", res.Task.Row, res.Outcome)
		}
		data, err := bucket.ReadAll(ctx, res.Task.Dest)
		if err != nil {
			t.Fatalf("read %s from bucket: %v", res.Task.Dest, err)
		}
		if !bytes.Equal(data, files[i].Data) {
			t.Errorf("object %s: content mismatch (%d vs %d bytes)",
				res.Task.Dest, len(data), len(files[i].Data))
		}
	}
}

// TestDownloadToS3Halts checks that a run against a dead upstream trips the
// breaker even when the output bucket is remote.
func TestDownloadToS3Halts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	server := testutils.StartTestHTTPServer(t, nil) // every path 404s

	env := testutils.StartMinioContainer(t, ctx, "exceldl-halt")
	defer env.Close(ctx)

	bucket, err := env.OpenBucket(ctx)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	var tasks []downloader.Task
	for i := 0; i < 8; i++ {
		tasks = append(tasks, downloader.Task{
			Row:  i + 2,
			URL:  fmt.Sprintf("%s/missing%d.jpg", server.URL, i),
			Dest: fmt.Sprintf("missing%d.jpg", i),
		})
	}

	client := dlhttp.NewClient(dlhttp.DefaultOptions())
	fetcher := downloader.NewFetcher(client, bucket)

	results, tripped := downloader.Run(ctx, fetcher, tasks, downloader.Options{
		Concurrency: 1,
		Breaker:     downloader.NewBreaker(2),
	})
	if !tripped {
		t.Fatal("expected the breaker to trip")
	}
	if len(results) >= len(tasks) {
		t.Fatalf("expected an early halt, got %d results for %d tasks", len(results), len(tasks))
	}
}
