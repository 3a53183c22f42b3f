package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Print a Mermaid flowchart of the workflow",
		Long: `Prints the declared states and transitions as a Mermaid flowchart. With
--reachability it prints the explored graph of (state, context) nodes instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, logger, err := load(cmd, args[0])
			if err != nil {
				return err
			}

			reach, _ := cmd.Flags().GetBool("reachability")
			if !reach {
				fmt.Fprint(cmd.OutOrStdout(), graph.Definition(wf.Definition, nil))
				return nil
			}

			opts, err := planningOptions(cmd, logger)
			if err != nil {
				return err
			}
			g, err := planner.Explore(wf.Definition, opts...)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.Reachability(g))
			return nil
		},
	}
	cmd.Flags().Bool("reachability", false, "Render the reachability graph instead of the declared states")
	addPlanningFlags(cmd)
	return cmd
}
