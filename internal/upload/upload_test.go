package upload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/localstore"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSendAlphaExportRetries verifies 5xx responses are retried and the
// import result is decoded on success.
func TestSendAlphaExportRetries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/me/sets/alpha" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "key" {
			t.Errorf("missing API key")
		}
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"sessions_received":2,"sets_inserted":13}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", "key")
	c.retryDelay = time.Millisecond

	res, err := c.SendAlphaExport(context.Background(), "me", []byte("csv"))
	if err != nil {
		t.Fatal(err)
	}
	if res.SessionsReceived != 2 || res.SetsInserted != 13 {
		t.Errorf("result = %+v", res)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

// TestSendAlphaExportClientError verifies a 4xx is not retried.
func TestSendAlphaExportClientError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad csv"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key")
	c.retryDelay = time.Millisecond
	if _, err := c.SendAlphaExport(context.Background(), "me", []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

// TestUploaderSkipsKnownFiles runs two syncs against a real local store:
// the second one only sends the file whose content changed.
func TestUploaderSkipsKnownFiles(t *testing.T) {
	var posted atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posted.Add(1)
		w.Write([]byte(`{"sessions_received":1,"sets_inserted":4}`))
	}))
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, dir, "2026-03-01.csv", "a")
	writeFile(t, dir, "nested/2026-03-08.CSV", "b")
	writeFile(t, dir, "notes.txt", "ignored")

	state, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	c := NewClient(ts.URL, "key")
	stats, err := New(c, state, dir, "", false, discard()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesTotal != 2 || stats.FilesUploaded != 2 || stats.SetsInserted != 8 {
		t.Errorf("first run = %+v", stats)
	}

	writeFile(t, dir, "2026-03-01.csv", "a, edited")
	stats, err = New(c, state, dir, "", false, discard()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 1 || stats.FilesSkipped != 1 {
		t.Errorf("second run = %+v", stats)
	}
	if posted.Load() != 3 {
		t.Errorf("posted = %d, want 3", posted.Load())
	}
}

// TestUploaderDryRun verifies nothing is sent or recorded.
func TestUploaderDryRun(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not POST")
	}))
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, dir, "export.csv", "a")

	state, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	stats, err := New(NewClient(ts.URL, "key"), state, dir, "me", true, discard()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 1 {
		t.Errorf("stats = %+v", stats)
	}
	hash, _ := HashFile(filepath.Join(dir, "export.csv"))
	if done, _ := state.IsImported(context.Background(), "export.csv", hash); done {
		t.Error("dry run should not mark files")
	}
}

// TestUploaderCountsErrors verifies a failing file does not stop the run.
func TestUploaderCountsErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "a")
	writeFile(t, dir, "b.csv", "b")

	state, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	stats, err := New(NewClient(ts.URL, "key"), state, dir, "me", false, discard()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesErrored != 2 || stats.FilesUploaded != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
