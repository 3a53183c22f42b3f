package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Waypoint",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Root().Name(), strings.TrimSpace(waypoint.Version))
		},
	}
}
