package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/taskboard"
)

type tasksInput struct {
	Tasks   []*model.SourceTask `json:"tasks"`
	Modules []model.ModuleRef   `json:"modules"`
}

// decodeTasks decodes a request carrying a task list and rejects null
// entries in it.
func decodeTasks(w http.ResponseWriter, r *http.Request, v any, in *tasksInput) bool {
	if !decodeBody(w, r, v) {
		return false
	}
	for i, t := range in.Tasks {
		if t == nil {
			writeStoreError(w, inputError(fmt.Sprintf("tasks[%d] is null", i)), "")
			return false
		}
	}
	return true
}

// handleValidateTasks handles POST /v1/tasks/validate.
func (s *Server) handleValidateTasks(w http.ResponseWriter, r *http.Request) {
	var in tasksInput
	if !decodeTasks(w, r, &in, &in) {
		return
	}
	writeJSON(w, http.StatusOK, taskboard.ValidateBatch(in.Tasks))
}

type groupInput struct {
	tasksInput
	By string `json:"by"`
}

// handleGroupTasks handles POST /v1/tasks/group.
func (s *Server) handleGroupTasks(w http.ResponseWriter, r *http.Request) {
	var in groupInput
	if !decodeTasks(w, r, &in, &in.tasksInput) {
		return
	}

	switch in.By {
	case "", "phase":
		writeJSON(w, http.StatusOK, map[string]any{"groups": taskboard.GroupByPhase(in.Tasks)})
	case "module":
		writeJSON(w, http.StatusOK, map[string]any{"groups": taskboard.GroupByModule(in.Tasks, in.Modules)})
	default:
		writeError(w, http.StatusBadRequest, "by must be phase or module")
	}
}

type convertInput struct {
	tasksInput
	ProjectID      string `json:"project_id"`
	SessionID      string `json:"session_id"`
	Category       string `json:"category"`
	ExportableOnly bool   `json:"exportable_only"`
	Deliver        bool   `json:"deliver"`
}

type convertOutput struct {
	Result *taskboard.BatchResult `json:"result"`
	Report *handoff.Report        `json:"report,omitempty"`
}

// handleConvertTasks handles POST /v1/tasks/convert. With deliver set the
// converted tasks are stored, announced and synced before responding.
func (s *Server) handleConvertTasks(w http.ResponseWriter, r *http.Request) {
	var in convertInput
	if !decodeTasks(w, r, &in, &in.tasksInput) {
		return
	}

	opts, err := s.convertOptions(in)
	if err != nil {
		writeStoreError(w, err, "failed to convert tasks")
		return
	}

	tasks := in.Tasks
	if in.ExportableOnly {
		tasks = taskboard.FilterExportable(tasks)
	}
	result := taskboard.NewConverter(opts, nil).ConvertBatch(tasks)
	if !in.Deliver {
		writeJSON(w, http.StatusOK, convertOutput{Result: result})
		return
	}

	report, err := s.handoff.Deliver(r.Context(), opts.ProjectID, result)
	if err != nil {
		s.logger.Error("deliver failed", "project_id", opts.ProjectID, "err", err)
		writeStoreError(w, err, "failed to deliver tasks")
		return
	}
	writeJSON(w, http.StatusCreated, convertOutput{Result: result, Report: report})
}

func (s *Server) convertOptions(in convertInput) (taskboard.Options, error) {
	opts := taskboard.Options{
		ProjectID:     strings.TrimSpace(in.ProjectID),
		SessionID:     in.SessionID,
		Modules:       in.Modules,
		StatusMapping: s.defaults.StatusMapping,
		Category:      strings.TrimSpace(in.Category),
	}
	if opts.ProjectID == "" {
		opts.ProjectID = s.defaults.ProjectID
	}
	if opts.Category == "" {
		opts.Category = s.defaults.Category
	}
	if opts.ProjectID == "" {
		return opts, inputError("project_id is required")
	}
	return opts, nil
}
