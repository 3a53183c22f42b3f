package dsl

import "github.com/aretw0/waypoint/pkg/domain"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	state   domain.State
	builder *Builder
}

// TransitionOption configures a single transition.
type TransitionOption func(*domain.Transition)

// On adds a transition for event to target. Several calls with the same event
// declare guarded candidates, evaluated in the order they were added.
func (s *StateBuilder) On(event, target string, opts ...TransitionOption) *StateBuilder {
	t := domain.Transition{Source: s.state.ID, Event: event, Target: target}
	for _, opt := range opts {
		opt(&t)
	}
	s.state.Transitions = append(s.state.Transitions, t)
	return s
}

// Invoke binds an async invocation to the state.
func (s *StateBuilder) Invoke(src string) *StateBuilder {
	s.state.Invoke = &domain.Invocation{Src: src}
	return s
}

// OnDone adds a transition on the completion event of the state's invocation.
// Invoke must be called first.
func (s *StateBuilder) OnDone(target string, opts ...TransitionOption) *StateBuilder {
	return s.On(domain.DoneEventName(s.src()), target, opts...)
}

// OnError adds a transition on the failure event of the state's invocation.
// Invoke must be called first.
func (s *StateBuilder) OnError(target string, opts ...TransitionOption) *StateBuilder {
	return s.On(domain.ErrorEventName(s.src()), target, opts...)
}

// State hops back to the workflow builder to declare another state.
func (s *StateBuilder) State(id string) *StateBuilder {
	return s.builder.State(id)
}

// Build returns the underlying domain.State.
func (s *StateBuilder) Build() domain.State {
	st := s.state
	st.Transitions = append([]domain.Transition(nil), s.state.Transitions...)
	return st
}

func (s *StateBuilder) src() string {
	if s.state.Invoke == nil {
		return ""
	}
	return s.state.Invoke.Src
}
