package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/report"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Generate test plans for a workflow",
		Long: `Searches the workflow's state space and prints one plan per reachable node:
the shortest event sequence to it, or every simple path with --strategy simple.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, _ := cmd.Flags().GetString("strategy")
			format, _ := cmd.Flags().GetString("format")
			if err := checkFormat(format); err != nil {
				return err
			}

			wf, logger, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			opts, err := planningOptions(cmd, logger)
			if err != nil {
				return err
			}
			plans, err := generatePlans(wf.Definition, strategy, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plans)
			case formatMarkdown:
				md, err := report.NewRenderer(isTerminal(out))(report.PlansMarkdown(wf.Definition.ID(), plans))
				if err != nil {
					return err
				}
				fmt.Fprint(out, md)
			default:
				report.NewPrinter(out, isTerminal(out)).Plans(plans)
			}
			return nil
		},
	}
	cmd.Flags().String("strategy", strategyShortest, "Path strategy (shortest, simple)")
	cmd.Flags().String("format", formatText, "Output format (text, markdown, json)")
	addPlanningFlags(cmd)
	return cmd
}
