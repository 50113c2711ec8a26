package server

import (
	"net/http"

	"github.com/alfredjeanlab/blueprint/internal/diagram"
	"github.com/alfredjeanlab/blueprint/internal/model"
)

type parseInput struct {
	Text     string `json:"text"`
	Announce bool   `json:"announce"`
}

// handleParseDiagrams handles POST /v1/diagrams/parse.
func (s *Server) handleParseDiagrams(w http.ResponseWriter, r *http.Request) {
	var in parseInput
	if !decodeBody(w, r, &in) {
		return
	}

	result := diagram.Parse(in.Text)
	if in.Announce {
		s.handoff.AnnounceDiagrams(r.Context(), result)
	}
	writeJSON(w, http.StatusOK, result)
}

type classifyInput struct {
	Code    string `json:"code"`
	Context string `json:"context"`
}

type classifyOutput struct {
	Type        model.DiagramType `json:"type"`
	Valid       bool              `json:"valid"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
}

// handleClassifyDiagram handles POST /v1/diagrams/classify.
func (s *Server) handleClassifyDiagram(w http.ResponseWriter, r *http.Request) {
	var in classifyInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	writeJSON(w, http.StatusOK, classifyOutput{
		Type:        diagram.Classify(in.Code),
		Valid:       diagram.IsValidCode(in.Code),
		Title:       diagram.ExtractTitle(in.Code, in.Context),
		Description: diagram.ExtractDescription(in.Code, in.Context),
	})
}
