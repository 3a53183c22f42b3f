package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/invoke"
	"github.com/aretw0/waypoint/pkg/planner"
)

// Issue codes reported for hooks that name nothing in the definition.
const (
	IssueUnknownHookState = "UNKNOWN_HOOK_STATE"
	IssueUnknownHookEvent = "UNKNOWN_HOOK_EVENT"
)

// Execution is the mutable state of one plan execution.
type Execution[T any] struct {
	// ID is unique per execution.
	ID string
	// Target is the system under test, opaque to the core.
	Target T
	// Slots holds the pending completions of this execution only.
	Slots *invoke.Slots
	Plan  planner.Plan
	// Step is the index of the step being run; -1 while asserting the start node.
	Step int
	// Expected is the node the target should be in after the current step.
	Expected domain.Snapshot
	Logger   *slog.Logger
}

// NewExecution allocates an execution of plan with its own Slots.
func NewExecution[T any](id string, plan planner.Plan, start domain.Snapshot) *Execution[T] {
	return &Execution[T]{
		ID:       id,
		Slots:    invoke.NewSlots(),
		Plan:     plan,
		Step:     -1,
		Expected: start,
		Logger:   logging.NewNop(),
	}
}

// ExecFunc drives the target with ev.
type ExecFunc[T any] func(ctx context.Context, x *Execution[T], ev domain.Event) error

// AssertFunc fails when the target is not observably in the expected state.
type AssertFunc[T any] func(ctx context.Context, x *Execution[T]) error

// Model is a definition plus probe hooks. It is read-only after Build and safe
// to share between concurrent executions.
type Model[T any] struct {
	def     *domain.Definition
	asserts map[string]AssertFunc[T]
	execs   map[string]ExecFunc[T]
	cases   map[string][]any
}

// Builder composes a Model.
type Builder[T any] struct {
	m *Model[T]
}

// New starts a model for def.
func New[T any](def *domain.Definition) *Builder[T] {
	return &Builder[T]{m: &Model[T]{
		def:     def,
		asserts: make(map[string]AssertFunc[T]),
		execs:   make(map[string]ExecFunc[T]),
		cases:   make(map[string][]any),
	}}
}

// Assert registers the assertion hook of state. States without one are not checked.
func (b *Builder[T]) Assert(state string, fn AssertFunc[T]) *Builder[T] {
	b.m.asserts[state] = fn
	return b
}

// Exec registers the exec hook of event. Events without one are no-ops on the target.
func (b *Builder[T]) Exec(event string, fn ExecFunc[T]) *Builder[T] {
	b.m.execs[event] = fn
	return b
}

// Cases registers payload variants of event. Each payload is enumerated as a
// distinct event during planning.
func (b *Builder[T]) Cases(event string, payloads ...any) *Builder[T] {
	b.m.cases[event] = append(b.m.cases[event], payloads...)
	return b
}

// Build checks that every hook names a declared state or event.
func (b *Builder[T]) Build() (*Model[T], error) {
	states := make(map[string]bool)
	for _, id := range b.m.def.StateIDs() {
		states[id] = true
	}
	events := make(map[string]bool)
	for _, name := range b.m.def.Events() {
		events[name] = true
	}

	var issues []domain.DefinitionIssue
	for state := range b.m.asserts {
		if !states[state] {
			issues = append(issues, domain.DefinitionIssue{
				Code: IssueUnknownHookState, State: state,
				Message: "assertion registered for an undeclared state",
			})
		}
	}
	for _, hooks := range []map[string]bool{keys(b.m.execs), keys(b.m.cases)} {
		for event := range hooks {
			if !events[event] {
				issues = append(issues, domain.DefinitionIssue{
					Code:    IssueUnknownHookEvent,
					Message: fmt.Sprintf("hook registered for event %q that no transition handles", event),
				})
			}
		}
	}
	if len(issues) > 0 {
		return nil, &domain.DefinitionError{ID: b.m.def.ID(), Issues: issues}
	}
	return b.m, nil
}

func keys[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// Definition returns the underlying workflow.
func (m *Model[T]) Definition() *domain.Definition { return m.def }

// Events enumerates the events to plan with: every event name in definition
// order, each expanded by its registered cases.
func (m *Model[T]) Events() []domain.Event {
	var out []domain.Event
	for _, name := range m.def.Events() {
		cases, ok := m.cases[name]
		if !ok {
			out = append(out, domain.EventFor(name, nil))
			continue
		}
		for _, payload := range cases {
			out = append(out, domain.EventFor(name, payload))
		}
	}
	return out
}

// PlannerOptions returns the planner options that enumerate this model's events.
func (m *Model[T]) PlannerOptions() []planner.Option {
	return []planner.Option{planner.WithEvents(m.Events())}
}

// ExecHook returns the exec hook for event.
func (m *Model[T]) ExecHook(event string) (ExecFunc[T], bool) {
	fn, ok := m.execs[event]
	return fn, ok
}

// AssertHook returns the assertion hook for state.
func (m *Model[T]) AssertHook(state string) (AssertFunc[T], bool) {
	fn, ok := m.asserts[state]
	return fn, ok
}

// Exec runs the exec hook for ev. A missing hook is a no-op.
func (m *Model[T]) Exec(ctx context.Context, x *Execution[T], ev domain.Event) error {
	fn, ok := m.execs[ev.Name]
	if !ok {
		return nil
	}
	return fn(ctx, x, ev)
}

// Assert runs the assertion hook for state. It reports false when none is registered.
func (m *Model[T]) Assert(ctx context.Context, x *Execution[T], state string) (bool, error) {
	fn, ok := m.asserts[state]
	if !ok {
		return false, nil
	}
	return true, fn(ctx, x)
}
