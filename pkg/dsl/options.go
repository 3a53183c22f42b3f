package dsl

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// When guards the transition with a named predicate.
func When(name string, check domain.GuardFunc) TransitionOption {
	return func(t *domain.Transition) {
		t.Guard = &domain.Guard{Name: name, Check: check}
	}
}

// Do appends a named reducer to the transition's actions.
func Do(name string, reduce domain.ActionFunc) TransitionOption {
	return func(t *domain.Transition) {
		t.Actions = append(t.Actions, domain.Action{Name: name, Reduce: reduce})
	}
}

// Increment adds one to an integer context key.
func Increment(key string) TransitionOption {
	return Do("increment("+key+")", func(ctx domain.Context, _ domain.Event) domain.Patch {
		return domain.Patch{key: ctx.Int(key) + 1}
	})
}

// Decrement subtracts one from an integer context key.
func Decrement(key string) TransitionOption {
	return Do("decrement("+key+")", func(ctx domain.Context, _ domain.Event) domain.Patch {
		return domain.Patch{key: ctx.Int(key) - 1}
	})
}

// Set assigns a constant to a context key.
func Set(key string, value any) TransitionOption {
	return Do(fmt.Sprintf("set(%s=%v)", key, value), func(domain.Context, domain.Event) domain.Patch {
		return domain.Patch{key: value}
	})
}

// Below guards on an integer context key being strictly less than limit.
func Below(key string, limit int) TransitionOption {
	return When(fmt.Sprintf("%s < %d", key, limit), func(ctx domain.Context, _ domain.Event) bool {
		return ctx.Int(key) < limit
	})
}
