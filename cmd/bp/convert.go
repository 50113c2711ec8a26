package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/config"
	"github.com/alfredjeanlab/blueprint/internal/taskboard"
)

var convertCmd = &cobra.Command{
	Use:     "convert <tasks-file|->",
	Short:   "Convert interview tasks into board tasks",
	GroupID: "tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		session, _ := cmd.Flags().GetString("session")
		modulesPath, _ := cmd.Flags().GetString("modules")
		category, _ := cmd.Flags().GetString("category")
		deliver, _ := cmd.Flags().GetBool("deliver")
		exportableOnly, _ := cmd.Flags().GetBool("exportable")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := converterOptions(cfg, project, session, category)
		if err != nil {
			return err
		}

		tf, err := loadTasks(args[0], modulesPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		opts.Modules = tf.Modules

		tasks := tf.Tasks
		if exportableOnly {
			tasks = taskboard.FilterExportable(tasks)
		}
		result := taskboard.NewConverter(opts, nil).ConvertBatch(tasks)
		logger.Debug("converted tasks", "tasks", len(result.Tasks), "errors", len(result.Errors), "warnings", len(result.Warnings))

		if !deliver {
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printBatchResult(cmd.OutOrStdout(), result)
			return nil
		}

		svc, err := openServices(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer svc.Close()

		report, err := svc.handoff.Deliver(cmd.Context(), opts.ProjectID, result)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"result": result, "report": report})
		}
		printBatchResult(cmd.OutOrStdout(), result)
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

// converterOptions merges flags over the project config.
func converterOptions(cfg *config.Config, project, session, category string) (taskboard.Options, error) {
	opts := taskboard.Options{
		ProjectID:     firstNonEmpty(project, cfg.ProjectID),
		SessionID:     session,
		StatusMapping: cfg.StatusMapping,
		Category:      firstNonEmpty(category, cfg.Category),
	}
	if opts.ProjectID == "" {
		return opts, errors.New("a project is required: pass --project or set project_id in " + cfg.ConfigPath)
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func init() {
	convertCmd.Flags().String("project", "", "target board project (default: project_id from config)")
	convertCmd.Flags().String("session", "", "interview session ID used to namespace generated IDs")
	convertCmd.Flags().String("modules", "", "YAML or JSON file with the session's modules")
	convertCmd.Flags().String("category", "", "board category (default: category from config, else feature)")
	convertCmd.Flags().Bool("exportable", false, "skip tasks that were already exported")
	convertCmd.Flags().Bool("deliver", false, "store, announce and sync the converted tasks")
}
