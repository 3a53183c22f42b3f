package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/loader"
	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	strategyShortest = "shortest"
	strategySimple   = "simple"

	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"

	defaultMaxNodes = 10000
)

func load(cmd *cobra.Command, path string) (*loader.Workflow, *slog.Logger, error) {
	logger, err := loggerFrom(cmd)
	if err != nil {
		return nil, nil, err
	}
	wf, err := loader.LoadFile(path, loader.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return wf, logger, nil
}

// addPlanningFlags registers the flags shared by commands that search the state space.
func addPlanningFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("limit", nil, "Bound a numeric context key, e.g. --limit ordersCompleted=1")
	cmd.Flags().Int("max-nodes", defaultMaxNodes, "Abort planning after discovering this many nodes (0 = unlimited)")
}

func planningOptions(cmd *cobra.Command, logger *slog.Logger) ([]planner.Option, error) {
	limits, _ := cmd.Flags().GetStringArray("limit")
	maxNodes, _ := cmd.Flags().GetInt("max-nodes")

	filter, err := parseLimits(limits)
	if err != nil {
		return nil, err
	}
	opts := []planner.Option{planner.WithLogger(logger), planner.WithNodeLimit(maxNodes)}
	if filter != nil {
		opts = append(opts, planner.WithFilter(filter))
	}
	return opts, nil
}

// parseLimits turns key=N pairs into a filter keeping nodes whose counters stay at or below N.
func parseLimits(raw []string) (planner.Filter, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	limits := make(map[string]int, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid limit %q: expected key=N", kv)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid limit %q: %w", kv, err)
		}
		limits[key] = n
	}
	return func(s domain.Snapshot) bool {
		for key, n := range limits {
			if s.Context.Int(key) > n {
				return false
			}
		}
		return true
	}, nil
}

func generatePlans(def *domain.Definition, strategy string, opts []planner.Option) ([]planner.Plan, error) {
	switch strategy {
	case strategyShortest:
		return planner.ShortestPaths(def, opts...)
	case strategySimple:
		return planner.SimplePaths(def, opts...)
	default:
		return nil, fmt.Errorf("unknown strategy %q: expected %s or %s", strategy, strategyShortest, strategySimple)
	}
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatMarkdown, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q: expected %s, %s or %s", format, formatText, formatMarkdown, formatJSON)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// debugHooks logs executor progress at debug level.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step executed", "plan", e.Plan, "index", e.Index, "event", e.Event, "state", e.State, "duration", e.Duration, "error", e.Err)
		},
		OnPlan: func(ctx context.Context, e *domain.PlanEvent) {
			logger.DebugContext(ctx, "plan finished", "plan", e.Plan, "status", e.Status, "steps", e.Steps, "duration", e.Duration)
		},
	}
}
