package main

import (
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/taskboard"
)

var validateCmd = &cobra.Command{
	Use:     "validate <tasks-file|->",
	Short:   "Check interview tasks before conversion",
	GroupID: "tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := loadTasks(args[0], "", cmd.InOrStdin())
		if err != nil {
			return err
		}
		v := taskboard.ValidateBatch(tf.Tasks)
		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), v); err != nil {
				return err
			}
		} else {
			printValidation(cmd.OutOrStdout(), v)
		}
		if !v.Valid {
			return errSilent
		}
		return nil
	},
}
