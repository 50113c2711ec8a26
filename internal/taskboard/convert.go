package taskboard

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alfredjeanlab/blueprint/internal/idgen"
	"github.com/alfredjeanlab/blueprint/internal/model"
)

// SubtaskTitleLimit is the maximum length, in runes, of a subtask title.
const SubtaskTitleLimit = 60

var (
	ErrNilTask        = errors.New("task is nil")
	ErrMissingID      = errors.New("source task ID is required")
	ErrMissingTitle   = errors.New("title is required")
	ErrMissingProject = errors.New("project ID is required")
)

// DefaultStatusMapping places every converted task in the backlog. Moving
// tasks further along the board is left to the board itself.
var DefaultStatusMapping = map[model.SourceStatus]model.BoardStatus{
	model.SourceDraft:     model.BoardBacklog,
	model.SourceValidated: model.BoardBacklog,
	model.SourceExported:  model.BoardBacklog,
}

// Options configures a conversion.
type Options struct {
	ProjectID string
	// SessionID only namespaces generated IDs.
	SessionID     string
	Modules       []model.ModuleRef
	StatusMapping map[model.SourceStatus]model.BoardStatus
	Category      string
}

// Converter turns source tasks into board tasks. It never mutates its input.
type Converter struct {
	projectID string
	scope     string
	modules   map[string]model.ModuleRef
	statuses  map[model.SourceStatus]model.BoardStatus
	category  string
	ids       *idgen.Generator
}

// NewConverter creates a converter. A nil generator uses idgen.Default.
func NewConverter(opts Options, ids *idgen.Generator) *Converter {
	if ids == nil {
		ids = idgen.Default
	}

	statuses := make(map[model.SourceStatus]model.BoardStatus, len(DefaultStatusMapping))
	for k, v := range DefaultStatusMapping {
		statuses[k] = v
	}
	for k, v := range opts.StatusMapping {
		statuses[k] = v
	}

	category := strings.TrimSpace(opts.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	return &Converter{
		projectID: strings.TrimSpace(opts.ProjectID),
		scope:     idgen.Session(opts.SessionID),
		modules:   moduleIndex(opts.Modules),
		statuses:  statuses,
		category:  category,
		ids:       ids,
	}
}

// ConvertOne converts a single task. Dependencies are copied verbatim;
// only ConvertBatch rewrites them to board IDs.
func (c *Converter) ConvertOne(task *model.SourceTask) (*model.BoardTask, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	if c.projectID == "" {
		return nil, ErrMissingProject
	}
	if strings.TrimSpace(task.ID) == "" {
		return nil, ErrMissingID
	}
	title := task.EffectiveTitle()
	if strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}

	criteria := cleanCriteria(task.EffectiveAcceptanceCriteria())
	subtasks, err := c.subtasks(criteria)
	if err != nil {
		return nil, fmt.Errorf("generate subtasks: %w", err)
	}

	var rationale string
	if m, ok := c.modules[task.ModuleID]; ok && strings.TrimSpace(m.Name) != "" {
		rationale = "Part of " + strings.TrimSpace(m.Name)
	}

	status, ok := c.statuses[task.Status]
	if !ok {
		status = model.BoardBacklog
	}

	now := c.ids.Timestamp()
	return &model.BoardTask{
		ID:          c.ids.BoardID(c.scope, task.ID),
		SpecID:      idgen.SpecID(c.scope, task.ID),
		ProjectID:   c.projectID,
		Title:       title,
		Description: composeDescription(task.EffectiveDescription(), rationale, criteria),
		Status:      status,
		Subtasks:    subtasks,
		Metadata: model.TaskMetadata{
			Category:           c.category,
			Complexity:         InferComplexity(task.EstimatedEffort),
			Priority:           InferPriority(task.Phase),
			AcceptanceCriteria: criteria,
			Dependencies:       append([]string{}, task.Dependencies...),
			EstimatedEffort:    strings.TrimSpace(task.EstimatedEffort),
			Rationale:          rationale,
			SourceTaskID:       task.ID,
			ModuleID:           task.ModuleID,
			Phase:              task.Phase,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BatchResult is the outcome of converting an export batch.
type BatchResult struct {
	Tasks []*model.BoardTask `json:"tasks"`
	// TaskIDMap maps source task IDs to the board IDs generated for them.
	TaskIDMap map[string]string `json:"task_id_map"`
	Errors    []string          `json:"errors"`
	Warnings  []string          `json:"warnings"`
}

// ConvertBatch converts tasks in two passes: every task is converted first,
// then dependencies on tasks in the same batch are rewritten to board IDs.
// A dependency may point at a task later in the slice, so a single forward
// pass cannot resolve it. References outside the batch pass through.
//
// A task that fails to convert is reported in Errors and left out of the
// result; the rest of the batch is unaffected.
func (c *Converter) ConvertBatch(tasks []*model.SourceTask) *BatchResult {
	res := &BatchResult{
		Tasks:     []*model.BoardTask{},
		TaskIDMap: make(map[string]string, len(tasks)),
		Errors:    []string{},
		Warnings:  []string{},
	}
	used := make(map[string]bool, len(tasks))

	for _, task := range tasks {
		bt, err := c.ConvertOne(task)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to convert task %q: %v", displayTitle(task), err))
			continue
		}

		bt.ID = uniqueID(bt.ID, used)
		res.Tasks = append(res.Tasks, bt)

		if _, dup := res.TaskIDMap[task.ID]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Task %q reuses source ID %q; dependencies resolve to the first task with that ID", bt.Title, task.ID))
		} else {
			res.TaskIDMap[task.ID] = bt.ID
		}

		if task.Status != model.SourceValidated && task.Status != model.SourceExported {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Task %q is not validated (status: %s)", bt.Title, task.Status))
		}
		if len(bt.Metadata.AcceptanceCriteria) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Task %q has no acceptance criteria", bt.Title))
		}
	}

	for _, bt := range res.Tasks {
		for i, dep := range bt.Metadata.Dependencies {
			if boardID, ok := res.TaskIDMap[dep]; ok {
				bt.Metadata.Dependencies[i] = boardID
			}
		}
	}
	return res
}

// ConvertOne converts a single task with the default ID generator.
func ConvertOne(task *model.SourceTask, opts Options) (*model.BoardTask, error) {
	return NewConverter(opts, nil).ConvertOne(task)
}

// ConvertBatch converts an export batch with the default ID generator.
func ConvertBatch(tasks []*model.SourceTask, opts Options) *BatchResult {
	return NewConverter(opts, nil).ConvertBatch(tasks)
}

func (c *Converter) subtasks(criteria []string) ([]model.Subtask, error) {
	out := make([]model.Subtask, 0, len(criteria))
	for _, cr := range criteria {
		id, err := c.ids.SubtaskID()
		if err != nil {
			return nil, err
		}
		out = append(out, model.Subtask{
			ID:          id,
			Title:       truncate(cr, SubtaskTitleLimit),
			Description: cr,
			Status:      model.SubtaskPending,
		})
	}
	return out, nil
}

// composeDescription renders a self-contained description: the task text,
// the module rationale and an acceptance-criteria checklist.
func composeDescription(desc, rationale string, criteria []string) string {
	var sections []string
	if d := strings.TrimSpace(desc); d != "" {
		sections = append(sections, d)
	}
	if rationale != "" {
		sections = append(sections, "**Rationale:** "+rationale)
	}
	if len(criteria) > 0 {
		var b strings.Builder
		b.WriteString("## Acceptance Criteria\n")
		for i, cr := range criteria {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("- [ ] ")
			b.WriteString(cr)
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n")
}

func cleanCriteria(criteria []string) []string {
	out := make([]string, 0, len(criteria))
	for _, cr := range criteria {
		if cr = strings.TrimSpace(cr); cr != "" {
			out = append(out, cr)
		}
	}
	return out
}

// truncate shortens s to at most limit runes, ending in "..." when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

// uniqueID suffixes id until it is not in used, then records it.
func uniqueID(id string, used map[string]bool) string {
	candidate := id
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	used[candidate] = true
	return candidate
}

func displayTitle(task *model.SourceTask) string {
	if task == nil {
		return ""
	}
	if t := strings.TrimSpace(task.EffectiveTitle()); t != "" {
		return t
	}
	return task.ID
}

func moduleIndex(modules []model.ModuleRef) map[string]model.ModuleRef {
	idx := make(map[string]model.ModuleRef, len(modules))
	for _, m := range modules {
		if _, ok := idx[m.ID]; !ok {
			idx[m.ID] = m
		}
	}
	return idx
}
