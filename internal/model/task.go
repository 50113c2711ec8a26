package model

// SourceStatus is the lifecycle state of a task produced by the interview.
// It only advances draft -> validated -> exported.
type SourceStatus string

const (
	SourceDraft     SourceStatus = "draft"
	SourceValidated SourceStatus = "validated"
	SourceExported  SourceStatus = "exported"
)

// String returns the string representation of the status.
func (s SourceStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s SourceStatus) IsValid() bool {
	switch s {
	case SourceDraft, SourceValidated, SourceExported:
		return true
	}
	return false
}

// UserEdits holds user overrides for a source task. A nil field means the
// user did not touch it.
type UserEdits struct {
	Title              *string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description        *string  `json:"description,omitempty" yaml:"description,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`
}

// SourceTask is a task record produced upstream by the planning interview.
type SourceTask struct {
	ID                 string       `json:"id" yaml:"id"`
	ModuleID           string       `json:"module_id" yaml:"module_id"`
	Title              string       `json:"title" yaml:"title"`
	Description        string       `json:"description" yaml:"description"`
	AcceptanceCriteria []string     `json:"acceptance_criteria" yaml:"acceptance_criteria"`
	Dependencies       []string     `json:"dependencies" yaml:"dependencies"`
	Phase              int          `json:"phase" yaml:"phase"`
	EstimatedEffort    string       `json:"estimated_effort" yaml:"estimated_effort"`
	Status             SourceStatus `json:"status" yaml:"status"`
	UserEdits          *UserEdits   `json:"user_edits,omitempty" yaml:"user_edits,omitempty"`
}

// EffectiveTitle returns the user-edited title if present, else the base title.
func (t *SourceTask) EffectiveTitle() string {
	if t.UserEdits != nil && t.UserEdits.Title != nil {
		return *t.UserEdits.Title
	}
	return t.Title
}

// EffectiveDescription returns the user-edited description if present,
// else the base description.
func (t *SourceTask) EffectiveDescription() string {
	if t.UserEdits != nil && t.UserEdits.Description != nil {
		return *t.UserEdits.Description
	}
	return t.Description
}

// EffectiveAcceptanceCriteria returns the user-edited criteria if present,
// else the base criteria.
func (t *SourceTask) EffectiveAcceptanceCriteria() []string {
	if t.UserEdits != nil && t.UserEdits.AcceptanceCriteria != nil {
		return t.UserEdits.AcceptanceCriteria
	}
	return t.AcceptanceCriteria
}

// ModuleRef is an architecture module a task belongs to.
type ModuleRef struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
