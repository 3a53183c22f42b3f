package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/spf13/cobra"
)

// Execute builds the command tree and runs it.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "waypoint",
		Short: "Waypoint runs declarative workflows and tests them against their model",
		Long: `Waypoint loads a finite-state workflow, plans the event sequences that reach
every state, and replays them against a running target while tracking coverage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newValidateCmd(),
		newGraphCmd(),
		newPlanCmd(),
		newServeCmd(),
		newRunCmd(),
		newVersionCmd(),
	)
	return root
}

func loggerFrom(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(cmd.ErrOrStderr(), level), nil
}
