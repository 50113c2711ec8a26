package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ProjectID string    `json:"project_id,omitempty"`
	TaskCount int       `json:"task_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes tasks as JSONL to w: a header line followed by one
// board_task record per task, sorted by ID. tasks is not reordered.
func ExportJSONL(w io.Writer, projectID string, tasks []*model.BoardTask) error {
	sorted := make([]*model.BoardTask, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		ProjectID: projectID,
		TaskCount: len(sorted),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, t := range sorted {
		if err := enc.Encode(record{Type: "board_task", Data: t}); err != nil {
			return fmt.Errorf("encode board task %s: %w", t.ID, err)
		}
	}

	return nil
}

// Snapshot is one JSONL export of a project's board, ready to be written
// to a destination.
type Snapshot struct {
	ProjectID string
	TaskCount int
	Data      []byte
}

// NewSnapshot exports tasks for projectID.
func NewSnapshot(projectID string, tasks []*model.BoardTask) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := ExportJSONL(&buf, projectID, tasks); err != nil {
		return nil, err
	}
	return &Snapshot{ProjectID: projectID, TaskCount: len(tasks), Data: buf.Bytes()}, nil
}

// StoreSnapshot exports the full board of projectID as held by s.
func StoreSnapshot(ctx context.Context, s store.Store, projectID string) (*Snapshot, error) {
	tasks, _, err := s.ListTasks(ctx, model.TaskFilter{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("list board tasks: %w", err)
	}
	return NewSnapshot(projectID, tasks)
}

// Body returns the task records of the snapshot without its header line.
// Two exports of the same tasks have equal bodies.
func (s *Snapshot) Body() []byte {
	if i := bytes.IndexByte(s.Data, '\n'); i >= 0 {
		return s.Data[i+1:]
	}
	return nil
}

// ObjectKey expands {project} in pattern to projectID, so each project
// syncs to its own object. Exports of every project use "all".
func ObjectKey(pattern, projectID string) string {
	return strings.ReplaceAll(pattern, "{project}", keySegment(projectID))
}

func keySegment(projectID string) string {
	switch projectID {
	case "":
		return "all"
	case ".", "..":
		return "_"
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(projectID)
}
