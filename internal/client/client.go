// Package client talks to a running blueprint server over HTTP.
package client

import (
	"context"

	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/taskboard"
)

// BoardClient is the subset of the server API the CLI uses to read and move
// board tasks.
type BoardClient interface {
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.BoardTask, int, error)
	GetTask(ctx context.Context, id string) (*model.BoardTask, error)
	UpdateTaskStatus(ctx context.Context, id string, status model.BoardStatus) (*model.BoardTask, error)
	DeleteTask(ctx context.Context, id string) error
	Close() error
}

// ConvertRequest is the body of POST /v1/tasks/convert.
type ConvertRequest struct {
	ProjectID      string              `json:"project_id,omitempty"`
	SessionID      string              `json:"session_id,omitempty"`
	Category       string              `json:"category,omitempty"`
	Tasks          []*model.SourceTask `json:"tasks"`
	Modules        []model.ModuleRef   `json:"modules,omitempty"`
	ExportableOnly bool                `json:"exportable_only,omitempty"`
	Deliver        bool                `json:"deliver,omitempty"`
}

// ConvertResponse is the result of a conversion. Report is set only when
// the request asked for delivery.
type ConvertResponse struct {
	Result *taskboard.BatchResult `json:"result"`
	Report *handoff.Report        `json:"report,omitempty"`
}
