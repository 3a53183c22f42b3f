package domain

import "fmt"

// Definition is the immutable static description of a workflow.
// Build it with NewDefinition (or the dsl and loader packages); it is never
// modified afterwards and is safe to share between goroutines.
type Definition struct {
	id      string
	initial string
	context Context
	states  map[string]*State
	order   []string
}

// NewDefinition validates and freezes a workflow. Missing transition sources are
// filled in from the owning state. It returns a *DefinitionError listing every
// structural problem found.
func NewDefinition(id, initial string, initialContext Context, states ...State) (*Definition, error) {
	def := &Definition{
		id:      id,
		initial: initial,
		context: initialContext,
		states:  make(map[string]*State, len(states)),
	}

	var issues []DefinitionIssue
	report := func(code, state, format string, args ...any) {
		issues = append(issues, DefinitionIssue{Code: code, State: state, Message: fmt.Sprintf(format, args...)})
	}

	if id == "" {
		report(IssueEmptyID, "", "workflow id is empty")
	}
	if len(states) == 0 {
		report(IssueNoStates, "", "workflow declares no states")
	}

	for _, s := range states {
		if s.ID == "" {
			report(IssueEmptyStateID, "", "state with empty id")
			continue
		}
		if _, dup := def.states[s.ID]; dup {
			report(IssueDuplicateState, s.ID, "state declared more than once")
			continue
		}
		frozen := &State{ID: s.ID, Transitions: make([]Transition, len(s.Transitions))}
		if s.Invoke != nil {
			inv := *s.Invoke
			frozen.Invoke = &inv
		}
		for i, t := range s.Transitions {
			if t.Source == "" {
				t.Source = s.ID
			}
			t.Actions = append([]Action(nil), t.Actions...)
			frozen.Transitions[i] = t
		}
		def.states[s.ID] = frozen
		def.order = append(def.order, s.ID)
	}

	if len(states) > 0 {
		if _, ok := def.states[initial]; !ok {
			report(IssueMissingInitial, initial, "initial state is not declared")
		}
	}

	for _, sid := range def.order {
		s := def.states[sid]
		if s.Invoke != nil && s.Invoke.Src == "" {
			report(IssueInvalidInvocation, sid, "invocation has an empty src")
		}
		for _, t := range s.Transitions {
			if t.Event == "" {
				report(IssueEmptyEvent, sid, "transition to %q has an empty event name", t.Target)
			}
			if t.Source != sid {
				report(IssueSourceMismatch, sid, "transition on %q declares source %q", t.Event, t.Source)
			}
			if _, ok := def.states[t.Target]; !ok {
				report(IssueInvalidTarget, sid, "transition on %q targets undeclared state %q", t.Event, t.Target)
			}
		}
	}

	if len(issues) > 0 {
		return nil, &DefinitionError{ID: id, Issues: issues}
	}
	return def, nil
}

// ID returns the workflow identifier.
func (d *Definition) ID() string { return d.id }

// Initial returns the initial state id.
func (d *Definition) Initial() string { return d.initial }

// InitialContext returns the context the workflow starts with.
func (d *Definition) InitialContext() Context { return d.context }

// InitialSnapshot is the (initial state, initial context) node.
func (d *Definition) InitialSnapshot() Snapshot {
	return Snapshot{State: d.initial, Context: d.context}
}

// State looks up a state by id. The returned value must be treated as read-only.
func (d *Definition) State(id string) (*State, bool) {
	s, ok := d.states[id]
	return s, ok
}

// StateIDs returns the state ids in declaration order.
func (d *Definition) StateIDs() []string {
	return append([]string(nil), d.order...)
}

// States returns the states in declaration order.
func (d *Definition) States() []*State {
	out := make([]*State, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.states[id])
	}
	return out
}

// Transitions returns every declared transition, grouped by state in declaration order.
func (d *Definition) Transitions() []Transition {
	var out []Transition
	for _, id := range d.order {
		out = append(out, d.states[id].Transitions...)
	}
	return out
}

// TransitionKeys returns the distinct (source, event, target) triples.
func (d *Definition) TransitionKeys() []TransitionKey {
	seen := make(map[TransitionKey]bool)
	var out []TransitionKey
	for _, t := range d.Transitions() {
		k := t.Key()
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Events returns every event name handled somewhere in the workflow.
// External events come first in declaration order, followed by the synthetic
// invocation events in the order their states are declared.
func (d *Definition) Events() []string {
	seen := make(map[string]bool)
	var external, synthetic []string
	for _, t := range d.Transitions() {
		if seen[t.Event] {
			continue
		}
		seen[t.Event] = true
		if KindOf(t.Event) == EventExternal {
			external = append(external, t.Event)
		} else {
			synthetic = append(synthetic, t.Event)
		}
	}
	return append(external, synthetic...)
}

// Invocations returns the invocation sources in state declaration order.
func (d *Definition) Invocations() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range d.States() {
		if s.Invoke != nil && !seen[s.Invoke.Src] {
			seen[s.Invoke.Src] = true
			out = append(out, s.Invoke.Src)
		}
	}
	return out
}
