package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/waypoint/internal/logging"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager holds sessions of type T by id and serializes work on each of them.
// It uses reference counting to garbage collect unused locks.
type Manager[T any] struct {
	mu       sync.Mutex // Global lock for both maps
	sessions map[string]T
	locks    map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewManager creates an empty Manager.
func NewManager[T any](opts ...Option) *Manager[T] {
	cfg := &config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Manager[T]{
		sessions: make(map[string]T),
		locks:    make(map[string]*lockEntry),
		logger:   cfg.logger,
	}
}

// Add registers v under id, replacing any previous session with that id.
func (m *Manager[T]) Add(id string, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = v
	m.logger.Debug("session added", "session", id, "sessions", len(m.sessions))
}

// Get returns the session registered under id.
func (m *Manager[T]) Get(id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.sessions[id]
	if !ok {
		return v, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return v, nil
}

// Remove unregisters id and returns the session it held.
func (m *Manager[T]) Remove(id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.sessions[id]
	if !ok {
		return v, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.logger.Debug("session removed", "session", id, "sessions", len(m.sessions))
	return v, nil
}

// List returns the registered ids, sorted.
func (m *Manager[T]) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Drain unregisters every session and returns them.
func (m *Manager[T]) Drain() map[string]T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sessions
	m.sessions = make(map[string]T)
	return out
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager[T]) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager[T]) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock looks up id and runs fn on it while holding the session's lock.
// Calls for the same id never overlap; calls for different ids do not block each other.
func (m *Manager[T]) WithLock(ctx context.Context, id string, fn func(context.Context, T) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	v, err := m.Get(id)
	if err != nil {
		return err
	}
	return fn(ctx, v)
}

// lockCount reports the live lock entries.
func (m *Manager[T]) lockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
