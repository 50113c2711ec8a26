package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/store"
)

// maxBodyBytes bounds request bodies; interview responses are text.
const maxBodyBytes = 4 << 20

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/diagrams/parse", s.handleParseDiagrams)
	mux.HandleFunc("POST /v1/diagrams/classify", s.handleClassifyDiagram)
	mux.HandleFunc("POST /v1/tasks/validate", s.handleValidateTasks)
	mux.HandleFunc("POST /v1/tasks/group", s.handleGroupTasks)
	mux.HandleFunc("POST /v1/tasks/convert", s.handleConvertTasks)
	mux.HandleFunc("GET /v1/board/tasks", s.handleListBoardTasks)
	mux.HandleFunc("GET /v1/board/tasks/{id}", s.handleGetBoardTask)
	mux.HandleFunc("PATCH /v1/board/tasks/{id}", s.handleUpdateBoardTask)
	mux.HandleFunc("DELETE /v1/board/tasks/{id}", s.handleDeleteBoardTask)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return RecoveryMiddleware(s.logger, LoggingMiddleware(s.logger, AuthMiddleware(authToken, mux)))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeStoreError maps store and handoff errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	var ie inputError
	switch {
	case errors.As(err, &ie), errors.Is(err, handoff.ErrInvalidTask):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "board task not found")
	case errors.Is(err, store.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, handoff.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
