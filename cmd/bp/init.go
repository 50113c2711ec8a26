package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/config"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Write a project file for the current directory",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		category, _ := cmd.Flags().GetString("category")
		mappings, _ := cmd.Flags().GetStringToString("status")
		force, _ := cmd.Flags().GetBool("force")

		path := configPath
		if path == "" {
			path = config.DefaultConfigPath
		}
		if strings.TrimSpace(project) == "" {
			return errors.New("--project is required")
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		pf := &config.ProjectFile{
			ProjectID:     project,
			Category:      category,
			StatusMapping: mappings,
		}
		if _, err := pf.Statuses(); err != nil {
			return err
		}
		if err := pf.Save(path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderOK("wrote"), path)
		return nil
	},
}

func init() {
	initCmd.Flags().String("project", "", "board project ID")
	initCmd.Flags().String("category", model.DefaultCategory, "board category for converted tasks")
	initCmd.Flags().StringToString("status", nil, "source=board status overrides, e.g. validated=in_progress")
	initCmd.Flags().Bool("force", false, "overwrite an existing project file")
}
