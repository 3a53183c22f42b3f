package domain

import (
	"context"
	"time"
)

// HookType defines the category of a lifecycle notification.
type HookType string

const (
	HookTransition       HookType = "transition"
	HookInvocationStart  HookType = "invocation_start"
	HookInvocationSettle HookType = "invocation_settle"
	HookInvocationStale  HookType = "invocation_stale"
	HookStep             HookType = "step"
	HookPlan             HookType = "plan"
)

// HookBase contains common fields for all notifications.
type HookBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      HookType  `json:"type"`
}

// TransitionEvent reports a fired transition.
type TransitionEvent struct {
	HookBase
	Transition TransitionKey `json:"transition"`
	From       Snapshot      `json:"from"`
	To         Snapshot      `json:"to"`
}

// InvocationEvent reports the lifecycle of an invocation.
type InvocationEvent struct {
	HookBase
	Src     string `json:"src"`
	State   string `json:"state"`
	Token   uint64 `json:"token"`
	IsError bool   `json:"is_error,omitempty"`
}

// StepEvent reports one executed plan step.
type StepEvent struct {
	HookBase
	Plan     string        `json:"plan"`
	Index    int           `json:"index"`
	Event    string        `json:"event"`
	State    string        `json:"state"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// PlanEvent reports the outcome of one executed plan.
type PlanEvent struct {
	HookBase
	Plan     string        `json:"plan"`
	Status   string        `json:"status"`
	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for observability. Every field is optional.
type LifecycleHooks struct {
	OnTransition       func(context.Context, *TransitionEvent)
	OnInvocationStart  func(context.Context, *InvocationEvent)
	OnInvocationSettle func(context.Context, *InvocationEvent)
	OnInvocationStale  func(context.Context, *InvocationEvent)
	OnStep             func(context.Context, *StepEvent)
	OnPlan             func(context.Context, *PlanEvent)
}

// Merge combines two hook sets; both callbacks run, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition:       chain(h.OnTransition, other.OnTransition),
		OnInvocationStart:  chain(h.OnInvocationStart, other.OnInvocationStart),
		OnInvocationSettle: chain(h.OnInvocationSettle, other.OnInvocationSettle),
		OnInvocationStale:  chain(h.OnInvocationStale, other.OnInvocationStale),
		OnStep:             chain(h.OnStep, other.OnStep),
		OnPlan:             chain(h.OnPlan, other.OnPlan),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
