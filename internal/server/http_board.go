package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/model"
)

// handleListBoardTasks handles GET /v1/board/tasks.
func (s *Server) handleListBoardTasks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStoreError(w, handoff.ErrNoStore, "")
		return
	}

	q := r.URL.Query()
	filter := model.TaskFilter{
		ProjectID: q.Get("project_id"),
		Sort:      q.Get("sort"),
	}
	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			status := model.BoardStatus(strings.TrimSpace(st))
			if !status.IsValid() {
				writeError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(st))
				return
			}
			filter.Status = append(filter.Status, status)
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	tasks, total, err := s.store.ListTasks(r.Context(), filter)
	if err != nil {
		s.logger.Error("list board tasks", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list board tasks")
		return
	}

	// Ensure tasks is never null in JSON output.
	if tasks == nil {
		tasks = []*model.BoardTask{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"total": total,
	})
}

// handleGetBoardTask handles GET /v1/board/tasks/{id}.
func (s *Server) handleGetBoardTask(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStoreError(w, handoff.ErrNoStore, "")
		return
	}

	t, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, "failed to get board task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type updateBoardTaskInput struct {
	Status model.BoardStatus `json:"status"`
}

// handleUpdateBoardTask handles PATCH /v1/board/tasks/{id}.
func (s *Server) handleUpdateBoardTask(w http.ResponseWriter, r *http.Request) {
	var in updateBoardTaskInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	t, err := s.handoff.UpdateStatus(r.Context(), r.PathValue("id"), in.Status)
	if err != nil {
		writeStoreError(w, err, "failed to update board task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteBoardTask handles DELETE /v1/board/tasks/{id}.
func (s *Server) handleDeleteBoardTask(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStoreError(w, handoff.ErrNoStore, "")
		return
	}

	id := r.PathValue("id")
	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		writeStoreError(w, err, "failed to delete board task")
		return
	}
	s.logger.Info("deleted board task", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
