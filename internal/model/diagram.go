package model

// DiagramType is the semantic category of a diagram, independent of the
// concrete mermaid dialect it is written in.
type DiagramType string

const (
	DiagramSystem    DiagramType = "system"
	DiagramEntity    DiagramType = "entity"
	DiagramFlow      DiagramType = "flow"
	DiagramComponent DiagramType = "component"
	DiagramDatabase  DiagramType = "database"
	DiagramSequence  DiagramType = "sequence"
)

// String returns the string representation of the diagram type.
func (t DiagramType) String() string {
	return string(t)
}

// IsValid checks whether the diagram type is a known value.
func (t DiagramType) IsValid() bool {
	switch t {
	case DiagramSystem, DiagramEntity, DiagramFlow, DiagramComponent, DiagramDatabase, DiagramSequence:
		return true
	}
	return false
}

// DefaultTitle returns the label used when a diagram carries no title of
// its own. Unknown types get the system label.
func (t DiagramType) DefaultTitle() string {
	switch t {
	case DiagramEntity:
		return "Entity Relationships"
	case DiagramFlow:
		return "Data Flow"
	case DiagramComponent:
		return "Component Architecture"
	case DiagramDatabase:
		return "Database Schema"
	case DiagramSequence:
		return "Sequence Diagram"
	default:
		return "System Architecture"
	}
}

// DiagramBlock is a fenced span of AI output suspected of holding diagram
// source. Context is the text immediately preceding the opening fence.
type DiagramBlock struct {
	Code    string `json:"code"`
	Context string `json:"context"`
}

// ParsedDiagram is a validated, classified diagram.
type ParsedDiagram struct {
	Type        DiagramType `json:"type"`
	Title       string      `json:"title"`
	MermaidCode string      `json:"mermaid_code"`
	Description string      `json:"description,omitempty"`
}

// ParseResult is the outcome of parsing one piece of AI output.
// ParseErrors is nil unless at least one candidate block was rejected.
type ParseResult struct {
	Diagrams    []ParsedDiagram `json:"diagrams"`
	RawText     string          `json:"raw_text"`
	ParseErrors []string        `json:"parse_errors,omitempty"`
}

// HasErrors reports whether any block was rejected.
func (r *ParseResult) HasErrors() bool {
	return len(r.ParseErrors) > 0
}
