package model

import "time"

// BoardStatus is the column a board task sits in.
type BoardStatus string

const (
	BoardBacklog     BoardStatus = "backlog"
	BoardInProgress  BoardStatus = "in_progress"
	BoardAIReview    BoardStatus = "ai_review"
	BoardHumanReview BoardStatus = "human_review"
	BoardDone        BoardStatus = "done"
)

// String returns the string representation of the status.
func (s BoardStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s BoardStatus) IsValid() bool {
	switch s {
	case BoardBacklog, BoardInProgress, BoardAIReview, BoardHumanReview, BoardDone:
		return true
	}
	return false
}

// SubtaskStatus tracks progress on a single checklist item.
type SubtaskStatus string

const (
	SubtaskPending    SubtaskStatus = "pending"
	SubtaskInProgress SubtaskStatus = "in_progress"
	SubtaskCompleted  SubtaskStatus = "completed"
)

// IsValid checks whether the subtask status is a known value.
func (s SubtaskStatus) IsValid() bool {
	switch s {
	case SubtaskPending, SubtaskInProgress, SubtaskCompleted:
		return true
	}
	return false
}

// Complexity is the inferred size of a task.
type Complexity string

const (
	ComplexityTrivial Complexity = "trivial"
	ComplexitySmall   Complexity = "small"
	ComplexityMedium  Complexity = "medium"
	ComplexityLarge   Complexity = "large"
	ComplexityComplex Complexity = "complex"
)

// IsValid checks whether the complexity is a known value.
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexityTrivial, ComplexitySmall, ComplexityMedium, ComplexityLarge, ComplexityComplex:
		return true
	}
	return false
}

// Priority is the board urgency of a task.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid checks whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// DefaultCategory is the board category given to converted tasks unless
// the caller supplies one.
const DefaultCategory = "feature"

// Subtask is one checklist item on a board task.
type Subtask struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      SubtaskStatus `json:"status"`
}

// TaskMetadata carries the planning attributes of a board task.
type TaskMetadata struct {
	Category           string     `json:"category"`
	Complexity         Complexity `json:"complexity"`
	Priority           Priority   `json:"priority"`
	AcceptanceCriteria []string   `json:"acceptance_criteria"`
	Dependencies       []string   `json:"dependencies"`
	EstimatedEffort    string     `json:"estimated_effort,omitempty"`
	Rationale          string     `json:"rationale,omitempty"`

	// Traceability back to the interview.
	SourceTaskID string `json:"source_task_id,omitempty"`
	ModuleID     string `json:"module_id,omitempty"`
	Phase        int    `json:"phase,omitempty"`
}

// BoardTask is the normalized record handed to the task board.
type BoardTask struct {
	ID          string       `json:"id"`
	SpecID      string       `json:"spec_id"`
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      BoardStatus  `json:"status"`
	Subtasks    []Subtask    `json:"subtasks"`
	Metadata    TaskMetadata `json:"metadata"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskFilter holds the parameters for listing board tasks.
type TaskFilter struct {
	ProjectID string
	Status    []BoardStatus
	Sort      string // column name, "-" prefix for descending
	Limit     int
	Offset    int
}
