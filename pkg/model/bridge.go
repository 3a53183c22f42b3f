package model

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/invoke"
)

// ForBridge builds a model that drives the workflow's own interpreter.
// External events are sent to the bridge; synthetic events settle the
// execution's slot for their invocation and wait for the bridge to settle.
// Every state asserts that the bridge holds exactly the expected node.
// Further hooks registered on the returned builder replace these defaults.
func ForBridge(def *domain.Definition) *Builder[*invoke.Bridge] {
	b := New[*invoke.Bridge](def)
	for _, name := range def.Events() {
		if domain.KindOf(name) == domain.EventExternal {
			b.Exec(name, SendEvent)
		} else {
			b.Exec(name, SettleInvocation)
		}
	}
	for _, id := range def.StateIDs() {
		b.Assert(id, ExpectSnapshot)
	}
	return b
}

// NewBridge is a target factory creating a bridge whose invocations are all
// backed by the execution's slots.
func NewBridge(def *domain.Definition, opts ...invoke.Option) func(context.Context, *Execution[*invoke.Bridge]) (*invoke.Bridge, error) {
	return func(ctx context.Context, x *Execution[*invoke.Bridge]) (*invoke.Bridge, error) {
		all := append([]invoke.Option{
			invoke.WithLogger(x.Logger),
			invoke.WithLifecycleHooks(x.Slots.Hooks()),
		}, opts...)
		b := invoke.New(def, x.Slots.Services(def.Invocations()...), all...)
		if _, err := b.Start(ctx); err != nil {
			return nil, err
		}
		return b, nil
	}
}

// SendEvent delivers ev to the bridge.
func SendEvent(ctx context.Context, x *Execution[*invoke.Bridge], ev domain.Event) error {
	_, err := x.Target.Send(ctx, ev)
	return err
}

// SettleInvocation resolves or rejects the slot of ev's invocation and waits
// until the bridge has routed the outcome.
func SettleInvocation(ctx context.Context, x *Execution[*invoke.Bridge], ev domain.Event) error {
	src := domain.InvocationSource(ev.Name)
	var err error
	if domain.KindOf(ev.Name) == domain.EventError {
		cause := ev.Err
		if cause == nil {
			cause = domain.ErrInvocationFailed
		}
		err = x.Slots.Reject(src, cause)
	} else {
		err = x.Slots.Resolve(src, ev.Payload)
	}
	if err != nil {
		return fmt.Errorf("failed to settle %s: %w", src, err)
	}
	_, err = x.Target.AwaitSettled(ctx)
	return err
}

// ExpectSnapshot fails unless the bridge holds x.Expected.
func ExpectSnapshot(_ context.Context, x *Execution[*invoke.Bridge]) error {
	got := x.Target.Snapshot()
	if got.State != x.Expected.State {
		return fmt.Errorf("expected state %q, got %q", x.Expected.State, got.State)
	}
	if !got.Equal(x.Expected) {
		return fmt.Errorf("expected context %s, got %s", x.Expected.Context, got.Context)
	}
	return nil
}
