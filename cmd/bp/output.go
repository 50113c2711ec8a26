package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/taskboard"
	"github.com/alfredjeanlab/blueprint/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printParseResult(w io.Writer, r model.ParseResult) {
	for i, d := range r.Diagrams {
		fmt.Fprintf(w, "%s %s %s\n", ui.RenderMuted(fmt.Sprintf("[%d]", i+1)), ui.RenderAccent(d.Title), ui.RenderMuted("("+d.Type.String()+")"))
		if d.Description != "" {
			fmt.Fprintf(w, "    %s\n", d.Description)
		}
	}
	for _, e := range r.ParseErrors {
		fmt.Fprintln(w, ui.RenderError("error:"), e)
	}
	fmt.Fprintf(w, "\n%d diagrams, %d errors\n", len(r.Diagrams), len(r.ParseErrors))
}

func printTaskTable(w io.Writer, tasks []*model.BoardTask) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tCOMPLEXITY\tSUBTASKS\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			t.ID,
			t.Status,
			t.Metadata.Priority,
			t.Metadata.Complexity,
			len(t.Subtasks),
			ui.Truncate(t.Title, 50),
		)
	}
	tw.Flush()
}

func printBatchResult(w io.Writer, r *taskboard.BatchResult) {
	printTaskTable(w, r.Tasks)
	for _, e := range r.Errors {
		fmt.Fprintln(w, ui.RenderError("error:"), e)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintln(w, ui.RenderWarn("warning:"), warn)
	}
	fmt.Fprintf(w, "\n%d converted, %d errors, %d warnings\n", len(r.Tasks), len(r.Errors), len(r.Warnings))
}

func printValidation(w io.Writer, v taskboard.BatchValidation) {
	for _, tv := range v.Tasks {
		mark := ui.RenderOK("ok  ")
		if !tv.Valid {
			mark = ui.RenderError("FAIL")
		}
		fmt.Fprintf(w, "%s %s %s\n", mark, tv.TaskID, ui.RenderMuted(tv.Title))
		for _, e := range tv.Errors {
			fmt.Fprintf(w, "     %s %s\n", ui.RenderError("error:"), e)
		}
		for _, warn := range tv.Warnings {
			fmt.Fprintf(w, "     %s %s\n", ui.RenderWarn("warning:"), warn)
		}
	}
	fmt.Fprintf(w, "\n%d tasks, %d errors, %d warnings\n", len(v.Tasks), v.ErrorCount, v.WarningCount)
}

func printPhaseGroups(w io.Writer, groups []taskboard.PhaseGroup) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent(fmt.Sprintf("Phase %d", g.Phase)), ui.RenderMuted(fmt.Sprintf("(%d)", len(g.Tasks))))
		printSourceTasks(w, g.Tasks)
	}
}

func printModuleGroups(w io.Writer, groups []taskboard.ModuleGroup) {
	for _, g := range groups {
		name := g.ModuleID
		if g.Module != nil && g.Module.Name != "" {
			name = g.Module.Name + " " + ui.RenderMuted("["+g.ModuleID+"]")
		}
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent(name), ui.RenderMuted(fmt.Sprintf("(%d)", len(g.Tasks))))
		printSourceTasks(w, g.Tasks)
	}
}

func printSourceTasks(w io.Writer, tasks []*model.SourceTask) {
	for _, t := range tasks {
		fmt.Fprintf(w, "  %s %s %s\n", t.ID, ui.Truncate(t.EffectiveTitle(), 60), ui.RenderMuted(string(t.Status)))
	}
}

func printReport(w io.Writer, r *handoff.Report) {
	fmt.Fprintf(w, "%s %d stored, %d events published", ui.RenderOK("delivered:"), r.Stored, r.Published)
	if r.Destinations > 0 {
		fmt.Fprintf(w, ", %d/%d destinations synced (%d bytes)", r.Destinations-r.FailedDestinations, r.Destinations, r.Bytes)
	}
	fmt.Fprintln(w)
	if r.FailedDestinations > 0 {
		fmt.Fprintln(w, ui.RenderWarn("warning:"), r.FailedDestinations, "destination(s) failed, see log")
	}
}
