package ports

import (
	"context"
	"errors"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ErrRunNotFound is returned when a run has recorded nothing.
var ErrRunNotFound = errors.New("run not found")

// CoverageStore persists the states and transitions visited by a run.
// Implementations must be safe for concurrent use; adding is idempotent.
type CoverageStore interface {
	// AddStates records visited state ids for runID.
	AddStates(ctx context.Context, runID string, states ...string) error

	// AddTransitions records visited transition triples for runID.
	AddTransitions(ctx context.Context, runID string, transitions ...domain.TransitionKey) error

	// States returns the visited state ids of runID in no particular order.
	// Returns ErrRunNotFound if the run recorded nothing.
	States(ctx context.Context, runID string) ([]string, error)

	// Transitions returns the visited triples of runID in no particular order.
	// Returns ErrRunNotFound if the run recorded nothing.
	Transitions(ctx context.Context, runID string) ([]domain.TransitionKey, error)

	// Delete removes everything recorded for runID.
	Delete(ctx context.Context, runID string) error

	// List returns the ids of the runs currently stored.
	List(ctx context.Context) ([]string, error)
}
