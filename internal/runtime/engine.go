package runtime

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Engine evaluates transitions of a single Definition.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	def    *domain.Definition
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine for def.
func NewEngine(def *domain.Definition, opts ...Option) *Engine {
	e := &Engine{
		def:    def,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Definition returns the workflow the engine evaluates.
func (e *Engine) Definition() *domain.Definition { return e.def }

// InvocationRequest asks the host to start the invocation declared by the entered state.
type InvocationRequest struct {
	Src     string
	State   string
	Context domain.Context
}

// Result is the outcome of a transition attempt.
type Result struct {
	Snapshot domain.Snapshot
	// Fired is nil when the event was ignored.
	Fired *domain.Transition
	// Invoke is set when the entered state declares an invocation.
	Invoke *InvocationRequest
}

// Changed reports whether a transition fired.
func (r Result) Changed() bool { return r.Fired != nil }

// Initial returns the initial snapshot and the invocation of the initial state, if any.
func (e *Engine) Initial() Result {
	snap := e.def.InitialSnapshot()
	return Result{Snapshot: snap, Invoke: e.invocationFor(snap)}
}

// Transition computes the next snapshot for ev.
//
// Candidates for ev.Name are evaluated in declaration order and the first whose
// guard passes fires. When none fires the current snapshot is returned unchanged.
// A snapshot naming an undeclared state yields an error wrapping domain.ErrUnknownState.
func (e *Engine) Transition(current domain.Snapshot, ev domain.Event) (Result, error) {
	state, ok := e.def.State(current.State)
	if !ok {
		return Result{Snapshot: current}, fmt.Errorf("%w: %q", domain.ErrUnknownState, current.State)
	}

	for _, t := range state.On(ev.Name) {
		if !t.Allows(current.Context, ev) {
			continue
		}
		next := domain.Snapshot{
			State:   t.Target,
			Context: t.Apply(current.Context, ev),
		}
		fired := t
		e.logger.Debug("transition fired",
			"transition", fired.Key().String(),
			"context", next.Context.String())
		return Result{Snapshot: next, Fired: &fired, Invoke: e.invocationFor(next)}, nil
	}

	e.logger.Debug("event ignored", "state", current.State, "event", ev.Name)
	return Result{Snapshot: current}, nil
}

func (e *Engine) invocationFor(snap domain.Snapshot) *InvocationRequest {
	state, ok := e.def.State(snap.State)
	if !ok || state.Invoke == nil {
		return nil
	}
	return &InvocationRequest{Src: state.Invoke.Src, State: state.ID, Context: snap.Context}
}
