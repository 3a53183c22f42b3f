package invoke

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Service performs the side effect of an invocation. ctx is cancelled when the
// owning state instance exits. snap is the snapshot at state entry.
type Service func(ctx context.Context, snap domain.Snapshot) (any, error)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks. Hooks run outside the
// bridge lock and may call back into the bridge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bridge) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithBaseContext sets the parent of every service context. Cancelling it
// cancels any running invocation.
func WithBaseContext(ctx context.Context) Option {
	return func(b *Bridge) {
		if ctx != nil {
			b.base = ctx
		}
	}
}

type pending struct {
	token  uint64
	src    string
	state  string
	cancel context.CancelFunc
	done   chan struct{}
}

// Bridge is a live interpreter for one workflow execution.
// It is safe for concurrent use.
type Bridge struct {
	engine   *runtime.Engine
	services map[string]Service
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	base     context.Context

	mu      sync.Mutex
	root    context.Context
	stop    context.CancelFunc
	current domain.Snapshot
	token   uint64
	pending *pending
	started bool
	stopped bool
}

// New creates a bridge for def. services maps invocation src to its Service.
// The bridge is idle until Start or the first Send.
func New(def *domain.Definition, services map[string]Service, opts ...Option) *Bridge {
	b := &Bridge{
		services: make(map[string]Service, len(services)),
		logger:   logging.NewNop(),
		base:     context.Background(),
	}
	for src, svc := range services {
		b.services[src] = svc
	}
	for _, opt := range opts {
		opt(b)
	}
	b.engine = runtime.NewEngine(def, runtime.WithLogger(b.logger))
	b.root, b.stop = context.WithCancel(b.base)
	b.current = def.InitialSnapshot()
	return b
}

// effect is deferred work (hooks, goroutine launches) run after the lock is released.
type effect func(ctx context.Context)

func run(ctx context.Context, effects []effect) {
	for _, fx := range effects {
		fx(ctx)
	}
}

// Start enters the initial state, starting its invocation if it declares one.
// Calling Start again returns the current snapshot.
func (b *Bridge) Start(ctx context.Context) (domain.Snapshot, error) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return domain.Snapshot{}, ErrStopped
	}
	effects := b.startLocked()
	snap := b.current
	b.mu.Unlock()

	run(ctx, effects)
	return snap, nil
}

func (b *Bridge) startLocked() []effect {
	if b.started {
		return nil
	}
	b.started = true
	res := b.engine.Initial()
	b.current = res.Snapshot
	return b.enter(res)
}

// Send delivers an external event and returns the resulting snapshot.
// An ignored event leaves the state instance, and any pending invocation, untouched.
func (b *Bridge) Send(ctx context.Context, ev domain.Event) (domain.Snapshot, error) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return domain.Snapshot{}, ErrStopped
	}
	effects := b.startLocked()
	more, err := b.apply(ev)
	effects = append(effects, more...)
	snap := b.current
	b.mu.Unlock()

	run(ctx, effects)
	return snap, err
}

// Snapshot returns the current snapshot.
func (b *Bridge) Snapshot() domain.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Pending returns the src of the running invocation, if any.
func (b *Bridge) Pending() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return "", false
	}
	return b.pending.src, true
}

// AwaitSettled blocks until the invocation pending at call time has settled or
// been cancelled, or ctx is done, and returns the snapshot at that point. An
// invocation started by the settling transition is not awaited; by the time
// AwaitSettled returns it is pending and its start hooks have run.
func (b *Bridge) AwaitSettled(ctx context.Context) (domain.Snapshot, error) {
	b.mu.Lock()
	p, snap := b.pending, b.current
	b.mu.Unlock()
	if p == nil {
		return snap, nil
	}

	select {
	case <-p.done:
		return b.Snapshot(), nil
	case <-ctx.Done():
		return b.Snapshot(), ctx.Err()
	}
}

// Stop cancels the pending invocation. Later calls to Send return ErrStopped.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	b.exit()
	b.stop()
}

// Close stops the bridge. It lets executors release bridge targets as io.Closer.
func (b *Bridge) Close() error {
	b.Stop()
	return nil
}

// apply runs ev through the engine. Must be called with b.mu held.
func (b *Bridge) apply(ev domain.Event) ([]effect, error) {
	res, err := b.engine.Transition(b.current, ev)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %q: %w", ev.Name, err)
	}
	if !res.Changed() {
		return nil, nil
	}

	prev := b.current
	b.exit()
	b.current = res.Snapshot

	key := res.Fired.Key()
	effects := []effect{func(ctx context.Context) {
		if b.hooks.OnTransition != nil {
			b.hooks.OnTransition(ctx, &domain.TransitionEvent{
				HookBase:   domain.HookBase{Timestamp: time.Now(), Type: domain.HookTransition},
				Transition: key,
				From:       prev,
				To:         res.Snapshot,
			})
		}
	}}
	return append(effects, b.enter(res)...), nil
}

// exit tears down the current state instance. Must be called with b.mu held.
func (b *Bridge) exit() {
	if b.pending == nil {
		return
	}
	b.pending.cancel()
	close(b.pending.done)
	b.pending = nil
}

// enter mints a new state instance and prepares its invocation. Must be called with b.mu held.
func (b *Bridge) enter(res runtime.Result) []effect {
	b.token++
	if res.Invoke == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.WithValue(b.root, instanceKey{}, b.token))
	p := &pending{
		token:  b.token,
		src:    res.Invoke.Src,
		state:  res.Invoke.State,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	b.pending = p

	svc, ok := b.services[p.src]
	if !ok {
		svc = missing(p.src)
	}
	snap := b.current

	return []effect{func(hctx context.Context) {
		b.logger.Debug("invocation started", "src", p.src, "state", p.state, "token", p.token)
		if b.hooks.OnInvocationStart != nil {
			b.hooks.OnInvocationStart(hctx, b.invocationEvent(domain.HookInvocationStart, p, false))
		}
		go func() {
			value, err := safeCall(ctx, svc, snap)
			b.settle(p, value, err)
		}()
	}}
}

// settle routes an invocation outcome back into the workflow, unless the
// state instance that started it has already been exited.
func (b *Bridge) settle(p *pending, value any, err error) {
	b.mu.Lock()
	if b.stopped || b.pending == nil || b.pending.token != p.token {
		b.mu.Unlock()
		b.logger.Debug("stale invocation result discarded", "src", p.src, "state", p.state, "token", p.token, "error", err)
		if b.hooks.OnInvocationStale != nil {
			b.hooks.OnInvocationStale(b.root, b.invocationEvent(domain.HookInvocationStale, p, err != nil))
		}
		return
	}

	b.pending = nil
	p.cancel()

	ev := domain.DoneEvent(p.src, value)
	if err != nil {
		ev = domain.ErrorEvent(p.src, err)
	}
	effects, applyErr := b.apply(ev)
	b.mu.Unlock()
	defer close(p.done)

	b.logger.Debug("invocation settled", "src", p.src, "state", p.state, "token", p.token, "error", err)
	if applyErr != nil {
		b.logger.Error("failed to route invocation result", "src", p.src, "error", applyErr)
	}
	if b.hooks.OnInvocationSettle != nil {
		b.hooks.OnInvocationSettle(b.root, b.invocationEvent(domain.HookInvocationSettle, p, err != nil))
	}
	run(b.root, effects)
}

func (b *Bridge) invocationEvent(t domain.HookType, p *pending, isError bool) *domain.InvocationEvent {
	return &domain.InvocationEvent{
		HookBase: domain.HookBase{Timestamp: time.Now(), Type: t},
		Src:      p.src,
		State:    p.state,
		Token:    p.token,
		IsError:  isError,
	}
}

type instanceKey struct{}

// instanceFrom returns the token of the state instance a service runs for, or
// zero outside a bridge.
func instanceFrom(ctx context.Context) uint64 {
	token, _ := ctx.Value(instanceKey{}).(uint64)
	return token
}

func missing(src string) Service {
	return func(context.Context, domain.Snapshot) (any, error) {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotFound, src)
	}
}

// safeCall runs svc, converting a panic into an error.
func safeCall(ctx context.Context, svc Service, snap domain.Snapshot) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invocation panicked: %v", r)
		}
	}()
	return svc(ctx, snap)
}
