package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// GitDestination commits each project's board to a file in a local clone
// and pushes it.
type GitDestination struct {
	repo   string // path to the local clone
	file   string // file path pattern within the repo, see ObjectKey
	branch string
}

// NewGitDestination creates a git destination. repo is the path to an
// existing local clone.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch}
}

// Write replaces the project's board file, commits and pushes. A snapshot
// whose tasks match the committed file leaves the repo untouched, so a
// periodic sync only commits real board changes.
func (d *GitDestination) Write(ctx context.Context, snap *Snapshot) error {
	if err := d.git(ctx, "checkout", d.branch); err != nil {
		return err
	}
	// The remote may not have the branch yet.
	_ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	rel := ObjectKey(d.file, snap.ProjectID)
	path := filepath.Join(d.repo, filepath.FromSlash(rel))
	if current, err := os.ReadFile(path); err == nil {
		committed := &Snapshot{Data: current}
		if bytes.Equal(committed.Body(), snap.Body()) {
			return nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read board file %s: %w", rel, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, snap.Data, 0o644); err != nil {
		return fmt.Errorf("write board file %s: %w", rel, err)
	}
	if err := d.git(ctx, "add", rel); err != nil {
		return err
	}
	if err := d.git(ctx, "commit", "-m", commitMessage(snap)); err != nil {
		return err
	}
	return d.git(ctx, "push", "origin", d.branch)
}

func commitMessage(snap *Snapshot) string {
	project := snap.ProjectID
	if project == "" {
		project = "all projects"
	}
	noun := "tasks"
	if snap.TaskCount == 1 {
		noun = "task"
	}
	return fmt.Sprintf("board: export %d %s for %s", snap.TaskCount, noun, project)
}

func (d *GitDestination) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, bytes.TrimSpace(out))
	}
	return nil
}
