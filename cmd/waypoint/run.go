package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/report"
	httpadapter "github.com/aretw0/waypoint/pkg/adapters/http"
	redisadapter "github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/executor"
	"github.com/aretw0/waypoint/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute test plans against a running session server",
		Long: `Generates plans for the workflow and replays each one against a session
server (see 'waypoint serve'), asserting the remote snapshot after every step.
Exits with an error when a plan fails or the required coverage is not met.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			target, _ := flags.GetString("target")
			strategy, _ := flags.GetString("strategy")
			format, _ := flags.GetString("format")
			concurrency, _ := flags.GetInt("concurrency")
			redisAddr, _ := flags.GetString("redis")
			criteriaName, _ := flags.GetString("coverage")
			metricsFile, _ := flags.GetString("metrics-file")
			withGraph, _ := flags.GetBool("graph")

			if err := checkFormat(format); err != nil {
				return err
			}
			criteria, err := parseCriteria(criteriaName)
			if err != nil {
				return err
			}

			wf, logger, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			def := wf.Definition

			m, err := httpadapter.Probe(def).Build()
			if err != nil {
				return err
			}
			opts, err := planningOptions(cmd, logger)
			if err != nil {
				return err
			}
			plans, err := generatePlans(def, strategy, append(m.PlannerOptions(), opts...))
			if err != nil {
				return err
			}

			trackerOpts := []coverage.Option{coverage.WithLogger(logger)}
			if redisAddr != "" {
				store := redisadapter.New(redisAddr, "", 0)
				defer store.Close()
				trackerOpts = append(trackerOpts, coverage.WithStore(store))
			}
			collector := metrics.New()

			exec := executor.New(m, httpadapter.NewSession(httpadapter.NewClient(target)),
				executor.WithLogger(logger),
				executor.WithConcurrency(concurrency),
				executor.WithTracker(coverage.NewTracker(def, trackerOpts...)),
				executor.WithLifecycleHooks(collector.Hooks()),
				executor.WithLifecycleHooks(debugHooks(logger)),
			)
			rep, err := exec.ExecuteAll(cmd.Context(), plans)
			if err != nil {
				return err
			}

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, collector.Registry()); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			case formatMarkdown:
				md, err := report.NewRenderer(isTerminal(out))(report.RunMarkdown(rep))
				if err != nil {
					return err
				}
				fmt.Fprint(out, md)
			default:
				report.NewPrinter(out, isTerminal(out)).Run(rep)
			}
			if withGraph && rep.Coverage != nil {
				fmt.Fprint(out, "\n"+graph.Definition(def, graph.CoverageOverlay(def, rep.Coverage)))
			}
			return rep.Err(criteria)
		},
	}
	cmd.Flags().String("target", "http://localhost:8080", "Base URL of the session server")
	cmd.Flags().String("strategy", strategyShortest, "Path strategy (shortest, simple)")
	cmd.Flags().String("format", formatText, "Output format (text, markdown, json)")
	cmd.Flags().Int("concurrency", 4, "Plans executed in parallel")
	cmd.Flags().String("redis", "", "Record coverage in Redis at this address")
	cmd.Flags().String("coverage", "all", "Required coverage (all, states, transitions, none)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics of the run to this file")
	cmd.Flags().Bool("graph", false, "Append a Mermaid flowchart with coverage overlay")
	addPlanningFlags(cmd)
	return cmd
}

func parseCriteria(name string) (coverage.Criteria, error) {
	switch name {
	case "all":
		return coverage.All, nil
	case "states":
		return coverage.States, nil
	case "transitions":
		return coverage.Transitions, nil
	case "none":
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown coverage %q: expected all, states, transitions or none", name)
	}
}
