package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	bpsync "github.com/alfredjeanlab/blueprint/internal/sync"
	"github.com/alfredjeanlab/blueprint/internal/taskboard"
)

var exportCmd = &cobra.Command{
	Use:     "export <tasks-file|->",
	Short:   "Convert interview tasks and write them as a JSONL board export",
	GroupID: "tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		session, _ := cmd.Flags().GetString("session")
		modulesPath, _ := cmd.Flags().GetString("modules")
		outPath, _ := cmd.Flags().GetString("out")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := converterOptions(cfg, project, session, "")
		if err != nil {
			return err
		}
		tf, err := loadTasks(args[0], modulesPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		opts.Modules = tf.Modules

		result := taskboard.NewConverter(opts, nil).ConvertBatch(taskboard.FilterExportable(tf.Tasks))
		for _, e := range result.Errors {
			logger.Warn("task skipped", "reason", e)
		}

		var w io.Writer = cmd.OutOrStdout()
		if outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer f.Close()
			w = f
		}
		if err := bpsync.ExportJSONL(w, opts.ProjectID, result.Tasks); err != nil {
			return err
		}
		logger.Info("exported board tasks", "project_id", opts.ProjectID, "tasks", len(result.Tasks), "skipped", len(result.Errors))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("project", "", "target board project (default: project_id from config)")
	exportCmd.Flags().String("session", "", "interview session ID used to namespace generated IDs")
	exportCmd.Flags().String("modules", "", "YAML or JSON file with the session's modules")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
}
