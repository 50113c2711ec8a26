package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateBoardTask checks a BoardTask for constraint violations before it
// is handed to a store. It returns a *ValidationError if any rules fail,
// or nil if the task is valid.
func ValidateBoardTask(t *BoardTask) error {
	var ve ValidationError

	if strings.TrimSpace(t.ID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "id", Message: "is required"})
	}
	if strings.TrimSpace(t.ProjectID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "project_id", Message: "is required"})
	}

	// Title: required and at most 500 characters.
	title := strings.TrimSpace(t.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	if !t.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", t.Status),
		})
	}
	if !t.Metadata.Complexity.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "metadata.complexity",
			Message: fmt.Sprintf("invalid value %q", t.Metadata.Complexity),
		})
	}
	if !t.Metadata.Priority.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "metadata.priority",
			Message: fmt.Sprintf("invalid value %q", t.Metadata.Priority),
		})
	}

	for i, st := range t.Subtasks {
		if !st.Status.IsValid() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   fmt.Sprintf("subtasks[%d].status", i),
				Message: fmt.Sprintf("invalid value %q", st.Status),
			})
		}
	}

	if t.UpdatedAt.Before(t.CreatedAt) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "updated_at",
			Message: "must not be before created_at",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
