package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/config"
	"github.com/alfredjeanlab/blueprint/internal/ui"
)

var (
	jsonOutput bool
	configPath string
	verbose    bool

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// errSilent marks a failure that has already been reported to the user.
var errSilent = errors.New("")

var rootCmd = &cobra.Command{
	Use:           "bp <command>",
	Short:         "Turn architecture interviews into diagrams and board tasks",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		if jsonOutput || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		return nil
	},
}

// loadConfig reads the environment and the --config project file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Debug("config loaded", "path", cfg.ConfigPath, "project_id", cfg.ProjectID)
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "project file (default $BLUEPRINT_CONFIG or "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "diagrams", Title: "Diagrams:"},
		&cobra.Group{ID: "tasks", Title: "Tasks:"},
		&cobra.Group{ID: "board", Title: "Board:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Diagrams
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(classifyCmd)

	// Tasks
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(exportCmd)

	// Board
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, ui.RenderError("Error:"), err)
		}
		os.Exit(1)
	}
}
