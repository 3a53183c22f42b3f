package http

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/model"
)

// Session is a remote session used as a plan target.
type Session struct {
	Client *Client
	ID     string
}

// Close deletes the remote session.
func (s *Session) Close() error {
	return s.Client.DeleteSession(context.Background(), s.ID)
}

// NewSession is a target factory creating one remote session per execution.
func NewSession(client *Client) func(context.Context, *model.Execution[*Session]) (*Session, error) {
	return func(ctx context.Context, x *model.Execution[*Session]) (*Session, error) {
		resp, err := client.CreateSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		x.Logger.Debug("remote session created", "session", resp.ID)
		return &Session{Client: client, ID: resp.ID}, nil
	}
}

// Probe builds a model that drives a remote session server hosting def.
// External events are posted as events, synthetic events settle the pending
// invocation, and every state asserts the remote snapshot.
func Probe(def *domain.Definition) *model.Builder[*Session] {
	b := model.New[*Session](def)
	for _, name := range def.Events() {
		switch domain.KindOf(name) {
		case domain.EventExternal:
			b.Exec(name, sendEvent)
		case domain.EventDone:
			b.Exec(name, resolveInvocation)
		case domain.EventError:
			b.Exec(name, rejectInvocation)
		}
	}
	for _, id := range def.StateIDs() {
		b.Assert(id, expectRemoteSnapshot)
	}
	return b
}

func sendEvent(ctx context.Context, x *model.Execution[*Session], ev domain.Event) error {
	_, err := x.Target.Client.Send(ctx, x.Target.ID, ev)
	return err
}

func resolveInvocation(ctx context.Context, x *model.Execution[*Session], ev domain.Event) error {
	_, err := x.Target.Client.Resolve(ctx, x.Target.ID, domain.InvocationSource(ev.Name), ev.Payload)
	return err
}

func rejectInvocation(ctx context.Context, x *model.Execution[*Session], ev domain.Event) error {
	msg := domain.ErrInvocationFailed.Error()
	if ev.Err != nil {
		msg = ev.Err.Error()
	}
	_, err := x.Target.Client.Reject(ctx, x.Target.ID, domain.InvocationSource(ev.Name), msg)
	return err
}

func expectRemoteSnapshot(ctx context.Context, x *model.Execution[*Session]) error {
	resp, err := x.Target.Client.Session(ctx, x.Target.ID)
	if err != nil {
		return err
	}
	got := resp.Snapshot
	if got.State != x.Expected.State {
		return fmt.Errorf("expected state %q, got %q", x.Expected.State, got.State)
	}
	if !got.Equal(x.Expected) {
		return fmt.Errorf("expected context %s, got %s", x.Expected.Context, got.Context)
	}
	return nil
}
