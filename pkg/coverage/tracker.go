// Package coverage accumulates the states and transitions visited by executed
// plans and reports what a run left uncovered.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
)

// Tracker records coverage for one run of one definition. It is safe for
// concurrent use when its store is.
type Tracker struct {
	def    *domain.Definition
	store  ports.CoverageStore
	runID  string
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithStore persists coverage in store instead of process memory.
func WithStore(store ports.CoverageStore) Option {
	return func(t *Tracker) {
		if store != nil {
			t.store = store
		}
	}
}

// WithRunID sets the run identifier. Trackers sharing a store and run id
// accumulate into the same report.
func WithRunID(id string) Option {
	return func(t *Tracker) {
		if id != "" {
			t.runID = id
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a tracker for def with a fresh run id and an in-memory store.
func NewTracker(def *domain.Definition, opts ...Option) *Tracker {
	t := &Tracker{
		def:    def,
		store:  memory.NewStore(),
		runID:  uuid.NewString(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RunID returns the run identifier.
func (t *Tracker) RunID() string { return t.runID }

// RecordState marks state as visited.
func (t *Tracker) RecordState(ctx context.Context, state string) error {
	if err := t.store.AddStates(ctx, t.runID, state); err != nil {
		return fmt.Errorf("failed to record state %q: %w", state, err)
	}
	return nil
}

// RecordTransition marks the triple as visited.
func (t *Tracker) RecordTransition(ctx context.Context, key domain.TransitionKey) error {
	if err := t.store.AddTransitions(ctx, t.runID, key); err != nil {
		return fmt.Errorf("failed to record transition %s: %w", key, err)
	}
	return nil
}

// Report computes coverage against the definition.
func (t *Tracker) Report(ctx context.Context) (*Report, error) {
	states, err := t.store.States(ctx, t.runID)
	if err != nil && !errors.Is(err, ports.ErrRunNotFound) {
		return nil, fmt.Errorf("failed to read covered states: %w", err)
	}
	transitions, err := t.store.Transitions(ctx, t.runID)
	if err != nil && !errors.Is(err, ports.ErrRunNotFound) {
		return nil, fmt.Errorf("failed to read covered transitions: %w", err)
	}

	visitedStates := make(map[string]bool, len(states))
	for _, s := range states {
		visitedStates[s] = true
	}
	visitedTransitions := make(map[domain.TransitionKey]bool, len(transitions))
	for _, k := range transitions {
		visitedTransitions[k] = true
	}

	r := &Report{RunID: t.runID, Workflow: t.def.ID()}
	for _, id := range t.def.StateIDs() {
		r.States++
		if visitedStates[id] {
			r.VisitedStates++
		} else {
			r.UncoveredStates = append(r.UncoveredStates, id)
		}
	}
	for _, k := range t.def.TransitionKeys() {
		r.Transitions++
		if visitedTransitions[k] {
			r.VisitedTransitions++
		} else {
			r.UncoveredTransitions = append(r.UncoveredTransitions, k)
		}
	}

	t.logger.Debug("coverage computed",
		"run", t.runID,
		"states", fmt.Sprintf("%d/%d", r.VisitedStates, r.States),
		"transitions", fmt.Sprintf("%d/%d", r.VisitedTransitions, r.Transitions))
	return r, nil
}

// Reset discards everything recorded for the run.
func (t *Tracker) Reset(ctx context.Context) error {
	return t.store.Delete(ctx, t.runID)
}
