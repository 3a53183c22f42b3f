// Package tests provides reusable contract suites for ports implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CoverageStoreContractTest verifies that an adapter complies with ports.CoverageStore.
func CoverageStoreContractTest(t *testing.T, store ports.CoverageStore) {
	t.Helper()
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405.000000000")

	cancel := domain.TransitionKey{Source: "cart", Event: "CANCEL", Target: "shopping"}
	add := domain.TransitionKey{Source: "shopping", Event: "ADD_TO_CART", Target: "cart"}

	t.Run("Add And Read", func(t *testing.T) {
		require.NoError(t, store.AddStates(ctx, runID, "shopping", "cart"))
		require.NoError(t, store.AddStates(ctx, runID, "cart"))
		require.NoError(t, store.AddTransitions(ctx, runID, add, cancel, add))

		states, err := store.States(ctx, runID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"shopping", "cart"}, states)

		transitions, err := store.Transitions(ctx, runID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []domain.TransitionKey{add, cancel}, transitions)
	})

	t.Run("Unknown Run", func(t *testing.T) {
		_, err := store.States(ctx, "missing-"+runID)
		assert.ErrorIs(t, err, ports.ErrRunNotFound)

		_, err = store.Transitions(ctx, "missing-"+runID)
		assert.ErrorIs(t, err, ports.ErrRunNotFound)
	})

	t.Run("Runs Are Isolated", func(t *testing.T) {
		other := runID + "-other"
		require.NoError(t, store.AddStates(ctx, other, "ordered"))
		defer func() { _ = store.Delete(ctx, other) }()

		states, err := store.States(ctx, runID)
		require.NoError(t, err)
		assert.NotContains(t, states, "ordered")

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, runID)
		assert.Contains(t, runs, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, runID))

		_, err := store.States(ctx, runID)
		assert.ErrorIs(t, err, ports.ErrRunNotFound)

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, runs, runID)
	})
}
