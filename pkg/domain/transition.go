package domain

// GuardFunc decides whether a transition may fire.
type GuardFunc func(ctx Context, ev Event) bool

// ActionFunc is a pure context reducer run when a transition fires.
type ActionFunc func(ctx Context, ev Event) Patch

// Guard is a named predicate. The name is used in descriptions and diagrams.
type Guard struct {
	Name  string
	Check GuardFunc
}

// Action is a named reducer.
type Action struct {
	Name   string
	Reduce ActionFunc
}

// Transition defines an event-triggered edge between two states.
type Transition struct {
	Source  string
	Event   string
	Target  string
	Guard   *Guard
	Actions []Action
}

// Allows evaluates the guard. A transition without a guard always passes.
func (t Transition) Allows(ctx Context, ev Event) bool {
	if t.Guard == nil || t.Guard.Check == nil {
		return true
	}
	return t.Guard.Check(ctx, ev)
}

// Apply runs the actions in declared order. Each action observes the context
// produced by the ones before it.
func (t Transition) Apply(ctx Context, ev Event) Context {
	next := ctx
	for _, a := range t.Actions {
		if a.Reduce == nil {
			continue
		}
		next = next.Merge(a.Reduce(next, ev))
	}
	return next
}

// Key identifies the (source, event, target) triple used by coverage accounting.
func (t Transition) Key() TransitionKey {
	return TransitionKey{Source: t.Source, Event: t.Event, Target: t.Target}
}

// TransitionKey is a (source, event, target) triple.
type TransitionKey struct {
	Source string `json:"source"`
	Event  string `json:"event"`
	Target string `json:"target"`
}

func (k TransitionKey) String() string {
	return k.Source + " --" + k.Event + "--> " + k.Target
}
