package taskboard

import (
	"fmt"
	"strings"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// TaskValidation reports the checks run against one source task. Errors
// block export; warnings only inform.
type TaskValidation struct {
	TaskID   string   `json:"task_id"`
	Title    string   `json:"title"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// BatchValidation reports the checks run against an export batch.
type BatchValidation struct {
	// Valid is true when no task has errors; warnings never affect it.
	Valid        bool             `json:"valid"`
	Tasks        []TaskValidation `json:"tasks"`
	ErrorCount   int              `json:"error_count"`
	WarningCount int              `json:"warning_count"`
}

// ValidateOne checks a task against the export requirements. A nil task is
// invalid.
func ValidateOne(task *model.SourceTask) TaskValidation {
	if task == nil {
		return TaskValidation{Errors: []string{ErrNilTask.Error()}, Warnings: []string{}}
	}
	v := TaskValidation{
		TaskID:   task.ID,
		Title:    task.EffectiveTitle(),
		Errors:   []string{},
		Warnings: []string{},
	}

	if strings.TrimSpace(task.EffectiveTitle()) == "" {
		v.Errors = append(v.Errors, "title is required")
	}
	if strings.TrimSpace(task.EffectiveDescription()) == "" {
		v.Errors = append(v.Errors, "description is required")
	}
	if strings.TrimSpace(task.ModuleID) == "" {
		v.Errors = append(v.Errors, "module ID is required")
	}

	if len(cleanCriteria(task.EffectiveAcceptanceCriteria())) == 0 {
		v.Warnings = append(v.Warnings, "no acceptance criteria")
	}
	if strings.TrimSpace(task.EstimatedEffort) == "" {
		v.Warnings = append(v.Warnings, "no effort estimate")
	}
	switch task.Status {
	case model.SourceDraft:
		v.Warnings = append(v.Warnings, "task is still a draft")
	case model.SourceExported:
		v.Warnings = append(v.Warnings, "task has already been exported")
	}
	for _, dep := range task.Dependencies {
		if dep == task.ID {
			v.Warnings = append(v.Warnings, fmt.Sprintf("task depends on itself (%s)", dep))
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}

// ValidateBatch validates every task in an export batch.
func ValidateBatch(tasks []*model.SourceTask) BatchValidation {
	bv := BatchValidation{
		Valid: true,
		Tasks: make([]TaskValidation, 0, len(tasks)),
	}
	for _, t := range tasks {
		v := ValidateOne(t)
		bv.Tasks = append(bv.Tasks, v)
		bv.ErrorCount += len(v.Errors)
		bv.WarningCount += len(v.Warnings)
		if !v.Valid {
			bv.Valid = false
		}
	}
	return bv
}
