package invoke

import (
	"context"
	"sync"
)

// Deferred is a pending completion that settles exactly once.
type Deferred struct {
	mu      sync.Mutex
	done    chan struct{}
	value   any
	err     error
	settled bool
}

// NewDeferred returns an unsettled Deferred.
func NewDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

// Resolve settles d with value.
func (d *Deferred) Resolve(value any) error {
	return d.settle(value, nil)
}

// Reject settles d with err.
func (d *Deferred) Reject(err error) error {
	return d.settle(nil, err)
}

func (d *Deferred) settle(value any, err error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return ErrAlreadySettled
	}
	d.value, d.err, d.settled = value, err, true
	close(d.done)
	return nil
}

// Wait blocks until d settles or ctx is done.
func (d *Deferred) Wait(ctx context.Context) (any, error) {
	select {
	case <-d.done:
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.value, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once d settles.
func (d *Deferred) Done() <-chan struct{} { return d.done }

// Settled reports whether Resolve or Reject has been called.
func (d *Deferred) Settled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}
