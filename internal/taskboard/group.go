package taskboard

import (
	"sort"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// PhaseGroup holds the tasks of one implementation phase.
type PhaseGroup struct {
	Phase int                 `json:"phase"`
	Tasks []*model.SourceTask `json:"tasks"`
}

// ModuleGroup holds the tasks of one module. Module is nil when the task's
// module ID is not among the known modules; ModuleID is always set.
type ModuleGroup struct {
	ModuleID string              `json:"module_id"`
	Module   *model.ModuleRef    `json:"module"`
	Tasks    []*model.SourceTask `json:"tasks"`
}

// GroupByPhase groups tasks by phase, ascending. Task order within a phase
// follows the input. Nil tasks are skipped.
func GroupByPhase(tasks []*model.SourceTask) []PhaseGroup {
	idx := make(map[int]int)
	var groups []PhaseGroup
	for _, t := range tasks {
		if t == nil {
			continue
		}
		i, ok := idx[t.Phase]
		if !ok {
			i = len(groups)
			idx[t.Phase] = i
			groups = append(groups, PhaseGroup{Phase: t.Phase})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Phase < groups[b].Phase
	})
	return groups
}

// GroupByModule groups tasks by module in first-encountered order.
func GroupByModule(tasks []*model.SourceTask, modules []model.ModuleRef) []ModuleGroup {
	known := moduleIndex(modules)
	idx := make(map[string]int)
	var groups []ModuleGroup
	for _, t := range tasks {
		if t == nil {
			continue
		}
		i, ok := idx[t.ModuleID]
		if !ok {
			i = len(groups)
			idx[t.ModuleID] = i
			g := ModuleGroup{ModuleID: t.ModuleID}
			if m, found := known[t.ModuleID]; found {
				g.Module = &m
			}
			groups = append(groups, g)
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

// FilterExportable returns the tasks that are not yet on the board.
func FilterExportable(tasks []*model.SourceTask) []*model.SourceTask {
	out := make([]*model.SourceTask, 0, len(tasks))
	for _, t := range tasks {
		if t != nil && (t.Status == model.SourceDraft || t.Status == model.SourceValidated) {
			out = append(out, t)
		}
	}
	return out
}
