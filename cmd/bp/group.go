package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/taskboard"
)

var groupCmd = &cobra.Command{
	Use:     "group <tasks-file|->",
	Short:   "Group interview tasks by phase or module",
	GroupID: "tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, _ := cmd.Flags().GetString("by")
		modulesPath, _ := cmd.Flags().GetString("modules")

		tf, err := loadTasks(args[0], modulesPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		switch by {
		case "phase":
			groups := taskboard.GroupByPhase(tf.Tasks)
			if jsonOutput {
				return printJSON(out, groups)
			}
			printPhaseGroups(out, groups)
		case "module":
			groups := taskboard.GroupByModule(tf.Tasks, tf.Modules)
			if jsonOutput {
				return printJSON(out, groups)
			}
			printModuleGroups(out, groups)
		default:
			return fmt.Errorf("invalid --by %q (expected phase or module)", by)
		}
		return nil
	},
}

func init() {
	groupCmd.Flags().String("by", "phase", "grouping key: phase or module")
	groupCmd.Flags().String("modules", "", "YAML or JSON file with the session's modules")
}
