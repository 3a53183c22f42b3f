package executor

import (
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/domain"
)

type config struct {
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	tracker     *coverage.Tracker
	concurrency int
}

// Option configures an Executor.
type Option func(*config)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers OnStep and OnPlan observers.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithTracker records coverage into tracker instead of a fresh in-memory one.
func WithTracker(tracker *coverage.Tracker) Option {
	return func(c *config) {
		c.tracker = tracker
	}
}

// WithConcurrency lets ExecuteAll run up to n plans at once. Steps inside a
// plan always run sequentially.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{logger: logging.NewNop(), concurrency: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
