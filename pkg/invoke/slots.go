package invoke

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// slot is bound to the state instance whose invocation it serves. token is
// zero until an instance claims it.
type slot struct {
	d     *Deferred
	token uint64
	taken bool
}

// Slots is a registry of Deferred values keyed by invocation src.
// Allocate one per plan execution; slots are never shared between executions.
type Slots struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewSlots returns an empty registry.
func NewSlots() *Slots {
	return &Slots{slots: make(map[string]*slot)}
}

// Open allocates a fresh slot for src, replacing any previous one.
// The next invocation of src waits on it, even if it is settled first.
func (s *Slots) Open(src string) *Deferred {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := NewDeferred()
	s.slots[src] = &slot{d: d}
	return d
}

// Get returns the current slot for src.
func (s *Slots) Get(src string) (*Deferred, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[src]
	if !ok {
		return nil, false
	}
	return sl.d, true
}

// Resolve settles the current slot for src with value.
func (s *Slots) Resolve(src string, value any) error {
	d, ok := s.Get(src)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoPendingSlot, src)
	}
	return d.Resolve(value)
}

// Reject settles the current slot for src with err.
func (s *Slots) Reject(src string, err error) error {
	d, ok := s.Get(src)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoPendingSlot, src)
	}
	return d.Reject(err)
}

// Service adapts the slots for src into a bridge Service.
// Each invocation takes the slot opened for it; when none is waiting it opens
// its own, which Resolve and Reject then settle.
func (s *Slots) Service(src string) Service {
	return func(ctx context.Context, _ domain.Snapshot) (any, error) {
		d, err := s.take(ctx, src)
		if err != nil {
			return nil, err
		}
		return d.Wait(ctx)
	}
}

// take hands the slot of the calling state instance to its invocation. A slot
// bound to another instance is never handed over. An invocation whose instance
// was already exited consumes its own slot and takes nothing else.
func (s *Slots) take(ctx context.Context, src string) (*Deferred, error) {
	token := instanceFrom(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[src]
	if ok && token != 0 && sl.token == token {
		sl.taken = true
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sl.d, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok || sl.taken || sl.token != 0 {
		sl = &slot{d: NewDeferred()}
		s.slots[src] = sl
	}
	sl.token = token
	sl.taken = true
	return sl.d, nil
}

// Hooks returns lifecycle hooks that prepare a slot whenever an invocation
// starts. Install them on the bridge so that Resolve and Reject never race the
// service goroutine.
func (s *Slots) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvocationStart: func(_ context.Context, e *domain.InvocationEvent) {
			s.prepare(e.Src, e.Token)
		},
	}
}

// prepare binds the slot for src to a new state instance. A slot left over
// from an earlier instance is replaced, settled or not; only a slot opened
// ahead of time and not yet claimed is kept.
func (s *Slots) prepare(src string, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[src]; ok && !sl.taken && sl.token == 0 {
		sl.token = token
		return
	}
	s.slots[src] = &slot{d: NewDeferred(), token: token}
}

// Services builds a service map backed by slots for every src.
func (s *Slots) Services(srcs ...string) map[string]Service {
	out := make(map[string]Service, len(srcs))
	for _, src := range srcs {
		out[src] = s.Service(src)
	}
	return out
}
