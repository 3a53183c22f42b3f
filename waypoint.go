package waypoint

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/executor"
	"github.com/aretw0/waypoint/pkg/invoke"
	"github.com/aretw0/waypoint/pkg/model"
	"github.com/aretw0/waypoint/pkg/planner"
)

// Strategy selects how plans are generated.
type Strategy int

const (
	// Shortest yields one shortest path per reachable node.
	Shortest Strategy = iota
	// Simple yields every path that visits no node twice.
	Simple
)

func (s Strategy) String() string {
	if s == Simple {
		return "simple"
	}
	return "shortest"
}

type config struct {
	logger    *slog.Logger
	strategy  Strategy
	filter    planner.Filter
	nodeLimit int
	criteria  coverage.Criteria
	execOpts  []executor.Option
}

// Option configures a Suite.
type Option func(*config)

// WithLogger sets the structured logger for planning and execution.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrategy selects the plan generation strategy (default Shortest).
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// WithFilter bounds the state space, e.g. to cap counters in the context.
func WithFilter(f planner.Filter) Option {
	return func(c *config) {
		c.filter = f
	}
}

// WithNodeLimit aborts planning once more than n nodes are discovered.
func WithNodeLimit(n int) Option {
	return func(c *config) {
		c.nodeLimit = n
	}
}

// WithCoverage sets what the coverage subtest of Test requires (default coverage.All).
func WithCoverage(c coverage.Criteria) Option {
	return func(cfg *config) {
		cfg.criteria = c
	}
}

// WithConcurrency sets how many plans Run executes in parallel.
func WithConcurrency(n int) Option {
	return func(c *config) {
		c.execOpts = append(c.execOpts, executor.WithConcurrency(n))
	}
}

// WithLifecycleHooks observes plan steps and outcomes.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.execOpts = append(c.execOpts, executor.WithLifecycleHooks(hooks))
	}
}

// WithTracker records coverage in t, e.g. one backed by a shared store.
func WithTracker(t *coverage.Tracker) Option {
	return func(c *config) {
		c.execOpts = append(c.execOpts, executor.WithTracker(t))
	}
}

// Suite is a test model together with its planning and execution settings.
// Coverage accumulates across every Run and Test call of the same Suite.
type Suite[T any] struct {
	model    *model.Model[T]
	executor *executor.Executor[T]
	cfg      *config
}

// NewSuite creates a suite executing the plans of m against targets built by factory.
func NewSuite[T any](m *model.Model[T], factory executor.TargetFactory[T], opts ...Option) *Suite[T] {
	cfg := &config{logger: logging.NewNop(), criteria: coverage.All}
	for _, opt := range opts {
		opt(cfg)
	}
	execOpts := append([]executor.Option{executor.WithLogger(cfg.logger)}, cfg.execOpts...)
	return &Suite[T]{
		model:    m,
		executor: executor.New(m, factory, execOpts...),
		cfg:      cfg,
	}
}

// ForBridge creates a suite that tests def against its own interpreter.
// Invocations are settled by the plan's synthetic events.
func ForBridge(def *domain.Definition, opts ...Option) (*Suite[*invoke.Bridge], error) {
	m, err := model.ForBridge(def).Build()
	if err != nil {
		return nil, err
	}
	return NewSuite(m, model.NewBridge(def), opts...), nil
}

// Model returns the suite's test model.
func (s *Suite[T]) Model() *model.Model[T] { return s.model }

// Tracker returns the coverage tracker shared by every execution of the suite.
func (s *Suite[T]) Tracker() *coverage.Tracker { return s.executor.Tracker() }

// Plans generates the plans of the model with the suite's strategy and bounds.
func (s *Suite[T]) Plans() ([]planner.Plan, error) {
	opts := append(s.model.PlannerOptions(),
		planner.WithLogger(s.cfg.logger),
		planner.WithNodeLimit(s.cfg.nodeLimit),
	)
	if s.cfg.filter != nil {
		opts = append(opts, planner.WithFilter(s.cfg.filter))
	}

	def := s.model.Definition()
	switch s.cfg.strategy {
	case Shortest:
		return planner.ShortestPaths(def, opts...)
	case Simple:
		return planner.SimplePaths(def, opts...)
	default:
		return nil, fmt.Errorf("unknown strategy %d", s.cfg.strategy)
	}
}

// Run executes plans and reports their results with the coverage so far.
func (s *Suite[T]) Run(ctx context.Context, plans []planner.Plan) (*executor.Report, error) {
	return s.executor.ExecuteAll(ctx, plans)
}

// Test runs every plan as a subtest named after it, then a "coverage" subtest
// that fails when the suite's coverage criteria are not met.
func (s *Suite[T]) Test(t *testing.T, plans []planner.Plan) {
	t.Helper()
	for _, plan := range plans {
		t.Run(plan.Name(), func(t *testing.T) {
			res := s.executor.Execute(t.Context(), plan)
			if res.Err != nil {
				t.Fatalf("%s after %d/%d steps: %v", res.Status, res.Steps, plan.Path.Len(), res.Err)
			}
		})
	}
	t.Run("coverage", func(t *testing.T) {
		rep, err := s.Tracker().Report(t.Context())
		if err != nil {
			t.Fatalf("failed to compute coverage: %v", err)
		}
		if err := rep.Check(s.cfg.criteria); err != nil {
			t.Error(err)
		}
	})
}
