package sync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// newClone creates a bare remote with one commit on main and returns the
// path of a working clone.
func newClone(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	remoteDir := t.TempDir()
	run(t, remoteDir, "git", "init", "--bare")

	workDir := t.TempDir()
	run(t, workDir, "git", "clone", remoteDir, "repo")
	repoDir := filepath.Join(workDir, "repo")

	run(t, repoDir, "git", "config", "user.email", "board@example.com")
	run(t, repoDir, "git", "config", "user.name", "Board Sync")
	run(t, repoDir, "git", "symbolic-ref", "HEAD", "refs/heads/main")
	if err := os.WriteFile(filepath.Join(repoDir, ".gitkeep"), nil, 0o644); err != nil {
		t.Fatalf("write .gitkeep: %v", err)
	}
	run(t, repoDir, "git", "add", ".")
	run(t, repoDir, "git", "commit", "-m", "init")
	run(t, repoDir, "git", "push", "origin", "main")
	return repoDir
}

func snapshot(t *testing.T, project string, ids ...string) *Snapshot {
	t.Helper()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tasks := make([]*model.BoardTask, len(ids))
	for i, id := range ids {
		tasks[i] = &model.BoardTask{ID: id, ProjectID: project, Title: "Task " + id, Status: model.BoardBacklog, CreatedAt: now, UpdatedAt: now}
	}
	snap, err := NewSnapshot(project, tasks)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestGitDestination_CommitsBoard(t *testing.T) {
	repoDir := newClone(t)
	dest := NewGitDestination(repoDir, "boards/{project}.jsonl", "main")
	ctx := context.Background()

	first := snapshot(t, "proj-1", "arch-1", "arch-2")
	if err := dest.Write(ctx, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(repoDir, "boards", "proj-1.jsonl"))
	if err != nil {
		t.Fatalf("read board: %v", err)
	}
	if string(got) != string(first.Data) {
		t.Fatalf("board content mismatch: got %q", got)
	}
	if msg := gitOutput(t, repoDir, "log", "-1", "--format=%s"); msg != "board: export 2 tasks for proj-1" {
		t.Errorf("commit message = %q", msg)
	}
	if remote := gitOutput(t, repoDir, "rev-parse", "origin/main"); remote != gitOutput(t, repoDir, "rev-parse", "HEAD") {
		t.Error("board commit was not pushed")
	}

	// The same tasks exported later differ only in the header timestamp.
	commits := gitOutput(t, repoDir, "rev-list", "--count", "HEAD")
	time.Sleep(2 * time.Millisecond)
	if err := dest.Write(ctx, snapshot(t, "proj-1", "arch-1", "arch-2")); err != nil {
		t.Fatalf("unchanged write: %v", err)
	}
	if after := gitOutput(t, repoDir, "rev-list", "--count", "HEAD"); after != commits {
		t.Errorf("unchanged board committed: %s -> %s commits", commits, after)
	}

	if err := dest.Write(ctx, snapshot(t, "proj-1", "arch-1")); err != nil {
		t.Fatalf("changed write: %v", err)
	}
	if msg := gitOutput(t, repoDir, "log", "-1", "--format=%s"); msg != "board: export 1 task for proj-1" {
		t.Errorf("commit message = %q", msg)
	}
}

func TestGitDestination_ProjectsKeptApart(t *testing.T) {
	repoDir := newClone(t)
	dest := NewGitDestination(repoDir, "boards/{project}.jsonl", "main")
	ctx := context.Background()

	one := snapshot(t, "proj-1", "arch-1")
	two := snapshot(t, "proj-2", "arch-9")
	for _, snap := range []*Snapshot{one, two} {
		if err := dest.Write(ctx, snap); err != nil {
			t.Fatalf("write %s: %v", snap.ProjectID, err)
		}
	}

	for project, want := range map[string]*Snapshot{"proj-1": one, "proj-2": two} {
		got, err := os.ReadFile(filepath.Join(repoDir, "boards", project+".jsonl"))
		if err != nil {
			t.Fatalf("read %s: %v", project, err)
		}
		if string(got) != string(want.Data) {
			t.Errorf("%s board overwritten: %q", project, got)
		}
	}
}

func TestGitDestination_UnknownBranch(t *testing.T) {
	repoDir := newClone(t)
	dest := NewGitDestination(repoDir, "board.jsonl", "release")

	err := dest.Write(context.Background(), snapshot(t, "p", "arch-1"))
	if err == nil || !strings.Contains(err.Error(), "git checkout") {
		t.Fatalf("expected checkout error, got %v", err)
	}
}

func TestCommitMessage(t *testing.T) {
	for _, tc := range []struct {
		snap *Snapshot
		want string
	}{
		{&Snapshot{ProjectID: "p", TaskCount: 0}, "board: export 0 tasks for p"},
		{&Snapshot{ProjectID: "p", TaskCount: 1}, "board: export 1 task for p"},
		{&Snapshot{TaskCount: 7}, "board: export 7 tasks for all projects"},
	} {
		if got := commitMessage(tc.snap); got != tc.want {
			t.Errorf("commitMessage(%+v) = %q, want %q", tc.snap, got, tc.want)
		}
	}
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("%s %v failed: %v\n%s", name, args, err, out)
	}
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v failed: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}
