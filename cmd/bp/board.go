package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/client"
	"github.com/alfredjeanlab/blueprint/internal/config"
	"github.com/alfredjeanlab/blueprint/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored board tasks",
	GroupID: "board",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		statuses, _ := cmd.Flags().GetStringSlice("status")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		sort, _ := cmd.Flags().GetString("sort")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		filter := model.TaskFilter{
			ProjectID: firstNonEmpty(project, cfg.ProjectID),
			Limit:     limit,
			Offset:    offset,
			Sort:      sort,
		}
		for _, s := range statuses {
			status := model.BoardStatus(strings.TrimSpace(s))
			if !status.IsValid() {
				return fmt.Errorf("invalid --status %q", s)
			}
			filter.Status = append(filter.Status, status)
		}

		var tasks []*model.BoardTask
		var total int
		if cfg.ServerURL != "" {
			c := client.NewHTTPClient(cfg.ServerURL, cfg.AuthToken)
			defer c.Close()
			tasks, total, err = c.ListTasks(cmd.Context(), filter)
		} else {
			st, serr := requireStore(cfg)
			if serr != nil {
				return serr
			}
			defer st.Close()
			tasks, total, err = st.ListTasks(cmd.Context(), filter)
		}
		if err != nil {
			return fmt.Errorf("list board tasks: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"tasks": tasks, "total": total})
		}
		printTaskTable(cmd.OutOrStdout(), tasks)
		if total > len(tasks) {
			fmt.Fprintf(cmd.OutOrStdout(), "\nshowing %d of %d\n", len(tasks), total)
		}
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <task-id> <status>",
	Short:   "Move a stored board task to another column",
	GroupID: "board",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := moveTask(cmd, cfg, args[0], model.BoardStatus(args[1]))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), t)
		}
		printTaskTable(cmd.OutOrStdout(), []*model.BoardTask{t})
		return nil
	},
}

// moveTask updates the task through bp serve when a server URL is set, else
// directly against the database.
func moveTask(cmd *cobra.Command, cfg *config.Config, id string, status model.BoardStatus) (*model.BoardTask, error) {
	if cfg.ServerURL != "" {
		if !status.IsValid() {
			return nil, fmt.Errorf("unknown status %q", status)
		}
		c := client.NewHTTPClient(cfg.ServerURL, cfg.AuthToken)
		defer c.Close()
		t, err := c.UpdateTaskStatus(cmd.Context(), id, status)
		if client.IsNotFound(err) {
			return nil, fmt.Errorf("board task %s not found", id)
		}
		return t, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}
	svc, err := openServices(cmd.Context(), cfg, true)
	if err != nil {
		return nil, err
	}
	defer svc.Close()
	return svc.handoff.UpdateStatus(cmd.Context(), id, status)
}

func init() {
	listCmd.Flags().String("project", "", "board project (default: project_id from config)")
	listCmd.Flags().StringSlice("status", nil, "only tasks in these statuses")
	listCmd.Flags().Int("limit", 50, "maximum tasks to show (0 for all)")
	listCmd.Flags().Int("offset", 0, "tasks to skip")
	listCmd.Flags().String("sort", "", "sort column, prefix with - for descending")
}
