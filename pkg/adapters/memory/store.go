package memory

import (
	"context"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

type run struct {
	states      map[string]bool
	transitions map[domain.TransitionKey]bool
}

// Store implements ports.CoverageStore in memory.
// Safe for concurrent use.
type Store struct {
	runs map[string]*run
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]*run),
	}
}

func (s *Store) get(runID string) *run {
	r, ok := s.runs[runID]
	if !ok {
		r = &run{
			states:      make(map[string]bool),
			transitions: make(map[domain.TransitionKey]bool),
		}
		s.runs[runID] = r
	}
	return r
}

// AddStates records visited states.
func (s *Store) AddStates(ctx context.Context, runID string, states ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.get(runID)
	for _, id := range states {
		r.states[id] = true
	}
	return nil
}

// AddTransitions records visited transitions.
func (s *Store) AddTransitions(ctx context.Context, runID string, transitions ...domain.TransitionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.get(runID)
	for _, k := range transitions {
		r.transitions[k] = true
	}
	return nil
}

// States returns the visited states of a run.
func (s *Store) States(ctx context.Context, runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[runID]
	if !ok {
		return nil, ports.ErrRunNotFound
	}
	out := make([]string, 0, len(r.states))
	for id := range r.states {
		out = append(out, id)
	}
	return out, nil
}

// Transitions returns the visited transitions of a run.
func (s *Store) Transitions(ctx context.Context, runID string) ([]domain.TransitionKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[runID]
	if !ok {
		return nil, ports.ErrRunNotFound
	}
	out := make([]domain.TransitionKey, 0, len(r.transitions))
	for k := range r.transitions {
		out = append(out, k)
	}
	return out, nil
}

// Delete removes a run.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

// List returns the stored runs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.runs))
	for id := range s.runs {
		runs = append(runs, id)
	}
	return runs, nil
}
