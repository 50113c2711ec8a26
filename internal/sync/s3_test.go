package sync

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type putRequest struct {
	path        string
	contentType string
	projectID   string
	taskCount   string
	body        string
}

// fakeS3 accepts PutObject calls and records them.
type fakeS3 struct {
	mu   sync.Mutex
	puts []putRequest
	fail bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "unexpected "+r.Method, http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.puts = append(f.puts, putRequest{
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		projectID:   r.Header.Get("X-Amz-Meta-Project-Id"),
		taskCount:   r.Header.Get("X-Amz-Meta-Task-Count"),
		body:        string(body),
	})
	fail := f.fail
	f.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
		return
	}
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(http.StatusOK)
}

func newS3Destination(t *testing.T, h http.Handler, key string) *S3Destination {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	dest, err := NewS3Destination(context.Background(), "boards", key, "us-east-1", srv.URL)
	if err != nil {
		t.Fatalf("NewS3Destination: %v", err)
	}
	return dest
}

func TestS3Destination_PerProjectObjects(t *testing.T) {
	fake := &fakeS3{}
	dest := newS3Destination(t, fake, "blueprint/{project}/board.jsonl")
	ctx := context.Background()

	if err := dest.Write(ctx, snapshot(t, "proj-1", "arch-1", "arch-2")); err != nil {
		t.Fatalf("write proj-1: %v", err)
	}
	if err := dest.Write(ctx, snapshot(t, "", "arch-9")); err != nil {
		t.Fatalf("write all: %v", err)
	}

	if len(fake.puts) != 2 {
		t.Fatalf("expected 2 puts, got %d", len(fake.puts))
	}
	for i, want := range []putRequest{
		{path: "/boards/blueprint/proj-1/board.jsonl", projectID: "proj-1", taskCount: "2", body: `"id":"arch-2"`},
		{path: "/boards/blueprint/all/board.jsonl", projectID: "all", taskCount: "1", body: `"id":"arch-9"`},
	} {
		got := fake.puts[i]
		if got.path != want.path {
			t.Errorf("put %d: path = %q, want %q", i, got.path, want.path)
		}
		if got.contentType != ndjsonContentType {
			t.Errorf("put %d: content type = %q", i, got.contentType)
		}
		if got.projectID != want.projectID || got.taskCount != want.taskCount {
			t.Errorf("put %d: metadata project=%q count=%q", i, got.projectID, got.taskCount)
		}
		if !strings.Contains(got.body, want.body) {
			t.Errorf("put %d: body missing %s:\n%s", i, want.body, got.body)
		}
	}
}

func TestS3Destination_Error(t *testing.T) {
	dest := newS3Destination(t, &fakeS3{fail: true}, "board.jsonl")
	err := dest.Write(context.Background(), snapshot(t, "p", "arch-1"))
	if err == nil || !strings.Contains(err.Error(), "s3 put board board.jsonl") {
		t.Fatalf("expected wrapped put error, got %v", err)
	}
}

func TestNewS3Destination_EmptyBucket(t *testing.T) {
	if _, err := NewS3Destination(context.Background(), "", "k", "us-east-1", ""); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}
