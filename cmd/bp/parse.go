package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/blueprint/internal/diagram"
)

var parseCmd = &cobra.Command{
	Use:     "parse [file|-]",
	Short:   "Extract and describe the mermaid diagrams in a response",
	GroupID: "diagrams",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		publish, _ := cmd.Flags().GetBool("publish")

		data, err := readInput(inputArg(args), cmd.InOrStdin())
		if err != nil {
			return err
		}
		result := diagram.Parse(string(data))
		logger.Debug("parsed response", "diagrams", len(result.Diagrams), "errors", len(result.ParseErrors))

		if publish {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := openServices(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer svc.Close()
			svc.handoff.AnnounceDiagrams(cmd.Context(), result)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printParseResult(cmd.OutOrStdout(), result)
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:     "classify [file|-]",
	Short:   "Print the diagram type of mermaid source",
	GroupID: "diagrams",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(inputArg(args), cmd.InOrStdin())
		if err != nil {
			return err
		}
		code := string(data)
		t := diagram.Classify(code)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"type":  t,
				"valid": diagram.IsValidCode(code),
				"title": diagram.ExtractTitle(code, ""),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

// inputArg returns the single optional file argument, defaulting to stdin.
func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func init() {
	parseCmd.Flags().Bool("publish", false, "announce the result on the event bus")
}
