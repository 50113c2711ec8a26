package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/events"
	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/taskboard"
	"github.com/alfredjeanlab/blueprint/internal/ui"
)

func init() {
	ui.ForceNoColor()
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]int{"n": 1}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	if buf.String() != "{\n  \"n\": 1\n}\n" {
		t.Errorf("printJSON = %q", buf.String())
	}
}

func TestPrintParseResult(t *testing.T) {
	var buf bytes.Buffer
	printParseResult(&buf, model.ParseResult{
		Diagrams: []model.ParsedDiagram{
			{Type: model.DiagramFlow, Title: "Checkout", Description: "Order path"},
		},
		ParseErrors: []string{"Block 2: Invalid mermaid diagram structure"},
	})
	out := buf.String()
	for _, want := range []string{"[1] Checkout (flow)", "Order path", "error: Block 2", "1 diagrams, 1 errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintBatchResult(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printBatchResult(&buf, &taskboard.BatchResult{
		Tasks: []*model.BoardTask{{
			ID:        "arch-t1",
			Title:     "Build login",
			Status:    model.BoardBacklog,
			Subtasks:  []model.Subtask{{ID: "s1"}, {ID: "s2"}},
			Metadata:  model.TaskMetadata{Priority: model.PriorityHigh, Complexity: model.ComplexityMedium},
			CreatedAt: now,
		}},
		Errors:   []string{"Task \"t2\": title is required"},
		Warnings: []string{"Task \"t1\" has no acceptance criteria"},
	})
	out := buf.String()
	for _, want := range []string{"ID", "arch-t1", "backlog", "Build login", "error:", "warning:", "1 converted, 1 errors, 1 warnings"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	printValidation(&buf, taskboard.ValidateBatch([]*model.SourceTask{
		{ID: "t1", ModuleID: "m", Title: "Ok", Description: "d", EstimatedEffort: "1 day", AcceptanceCriteria: []string{"works"}, Status: model.SourceValidated},
		{ID: "t2"},
	}))
	out := buf.String()
	if !strings.Contains(out, "ok   t1") || !strings.Contains(out, "FAIL t2") {
		t.Errorf("marks missing:\n%s", out)
	}
	if !strings.Contains(out, "title is required") {
		t.Errorf("error detail missing:\n%s", out)
	}
}

func TestPrintGroups(t *testing.T) {
	tasks := []*model.SourceTask{
		{ID: "t1", ModuleID: "m1", Title: "A", Phase: 1},
		{ID: "t2", ModuleID: "m9", Title: "B", Phase: 2},
	}

	var buf bytes.Buffer
	printPhaseGroups(&buf, taskboard.GroupByPhase(tasks))
	if !strings.Contains(buf.String(), "Phase 1 (1)") || !strings.Contains(buf.String(), "Phase 2 (1)") {
		t.Errorf("phase output:\n%s", buf.String())
	}

	buf.Reset()
	printModuleGroups(&buf, taskboard.GroupByModule(tasks, []model.ModuleRef{{ID: "m1", Name: "Auth"}}))
	out := buf.String()
	if !strings.Contains(out, "Auth [m1] (1)") {
		t.Errorf("known module missing name:\n%s", out)
	}
	if !strings.Contains(out, "m9 (1)") {
		t.Errorf("unknown module missing:\n%s", out)
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &handoff.Report{Stored: 2, Published: 3, Destinations: 2, FailedDestinations: 1, Bytes: 120})
	out := buf.String()
	if !strings.Contains(out, "2 stored, 3 events published, 1/2 destinations synced (120 bytes)") {
		t.Errorf("summary:\n%s", out)
	}
	if !strings.Contains(out, "1 destination(s) failed") {
		t.Errorf("missing failure warning:\n%s", out)
	}
}

func TestPrintEvent(t *testing.T) {
	task := &model.BoardTask{ID: "arch-1", ProjectID: "p1", Title: "Login", Status: model.BoardDone}
	for _, tc := range []struct {
		name  string
		topic string
		event any
		want  string
	}{
		{"Created", events.TopicBoardTaskCreated, events.BoardTaskCreated{Task: task}, "arch-1 created done Login"},
		{"Updated", events.TopicBoardTaskUpdated, events.BoardTaskUpdated{Task: task, Changes: map[string]any{"status": "done"}}, "arch-1 moved done Login"},
		{"UpdatedNoTask", events.TopicBoardTaskUpdated, events.BoardTaskUpdated{}, "moved event without task"},
		{"Batch", events.TopicBatchExported, events.BatchExported{ProjectID: "p1", TaskIDs: []string{"a", "b"}}, "batch 2 tasks p1"},
		{"BatchErrors", events.TopicBatchExported, events.BatchExported{ProjectID: "p1", TaskIDs: []string{"a"}, Errors: []string{"x"}}, "batch 1 tasks p1 1 errors"},
		{"Diagrams", events.TopicDiagramsParsed, events.DiagramsParsed{Errors: []string{"x"}}, "diagrams 0 parsed, 1 errors"},
		{"UnknownTopic", "other.topic", map[string]any{"hello": "world"}, `other.topic {"hello":"world"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			printEvent(&buf, events.Message{Topic: tc.topic, Data: data})
			if got := strings.TrimSpace(buf.String()); got != tc.want {
				t.Errorf("printEvent = %q, want %q", got, tc.want)
			}
		})
	}

	var buf bytes.Buffer
	printEvent(&buf, events.Message{Topic: events.TopicBatchExported, Data: []byte("not json")})
	if !strings.Contains(buf.String(), "unreadable event: not json") {
		t.Errorf("bad payload = %q", buf.String())
	}
}
