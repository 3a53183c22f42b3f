package domain

// Invocation is an async operation bound to a state's lifetime.
// Its outcome is delivered as the synthetic events DoneEventName(Src) and
// ErrorEventName(Src); the handlers for those are ordinary transitions
// declared on the owning state.
type Invocation struct {
	Src string
}

// DoneEvent returns the completion event name for this invocation.
func (i Invocation) DoneEvent() string { return DoneEventName(i.Src) }

// ErrorEvent returns the failure event name for this invocation.
func (i Invocation) ErrorEvent() string { return ErrorEventName(i.Src) }

// State is a named node of the workflow.
type State struct {
	ID string
	// Transitions holds every outgoing transition in declaration order.
	Transitions []Transition
	Invoke      *Invocation
}

// On returns the candidate transitions for event in declaration order.
func (s *State) On(event string) []Transition {
	var out []Transition
	for _, t := range s.Transitions {
		if t.Event == event {
			out = append(out, t)
		}
	}
	return out
}

// Events returns the distinct event names the state reacts to, in declaration order.
func (s *State) Events() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.Transitions {
		if !seen[t.Event] {
			seen[t.Event] = true
			out = append(out, t.Event)
		}
	}
	return out
}

// Terminal reports whether the state has no way out.
func (s *State) Terminal() bool {
	return len(s.Transitions) == 0 && s.Invoke == nil
}
