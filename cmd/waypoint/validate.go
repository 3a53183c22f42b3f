package main

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a workflow document",
		Long: `Loads a workflow document, reports definition issues and warns about states
that no event sequence reaches under the given limits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, logger, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			def := wf.Definition

			opts, err := planningOptions(cmd, logger)
			if err != nil {
				return err
			}
			g, err := planner.Explore(def, opts...)
			if err != nil {
				return fmt.Errorf("failed to explore %q: %w", def.ID(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ %s: %d states, %d transitions, %d reachable nodes\n",
				def.ID(), len(def.StateIDs()), len(def.TransitionKeys()), len(g.Nodes))
			for _, id := range g.Unreachable(def) {
				fmt.Fprintf(out, "  warning: state %q is unreachable\n", id)
			}
			return nil
		},
	}
	addPlanningFlags(cmd)
	return cmd
}
