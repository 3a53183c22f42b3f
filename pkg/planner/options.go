package planner

import (
	"errors"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// ErrNodeLimit is returned when the search discovers more nodes than WithNodeLimit allows.
var ErrNodeLimit = errors.New("node limit exceeded")

// Filter decides whether a node is kept in the plan set and expanded.
type Filter func(domain.Snapshot) bool

type config struct {
	filter    Filter
	events    []domain.Event
	logger    *slog.Logger
	nodeLimit int
}

// Option configures a search.
type Option func(*config)

// WithFilter excludes nodes for which f returns false. The initial node is always kept.
func WithFilter(f Filter) Option {
	return func(c *config) {
		c.filter = f
	}
}

// WithEvents replaces the enumerated events, e.g. with Model.Events to include payload cases.
func WithEvents(events []domain.Event) Option {
	return func(c *config) {
		c.events = events
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNodeLimit stops the search with ErrNodeLimit once more than n nodes are
// discovered. Zero means unlimited.
func WithNodeLimit(n int) Option {
	return func(c *config) {
		c.nodeLimit = n
	}
}

func newConfig(def *domain.Definition, opts []Option) *config {
	c := &config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.events == nil {
		c.events = DefaultEvents(def)
	}
	return c
}

func (c *config) keep(s domain.Snapshot) bool {
	return c.filter == nil || c.filter(s)
}

// DefaultEvents enumerates one event per event name of def, in the order of Definition.Events.
func DefaultEvents(def *domain.Definition) []domain.Event {
	names := def.Events()
	events := make([]domain.Event, len(names))
	for i, name := range names {
		events[i] = domain.EventFor(name, nil)
	}
	return events
}
