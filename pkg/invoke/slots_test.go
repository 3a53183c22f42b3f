package invoke_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/testutils"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/invoke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferred_SettlesOnce(t *testing.T) {
	d := invoke.NewDeferred()
	assert.False(t, d.Settled())

	require.NoError(t, d.Resolve(42))
	assert.ErrorIs(t, d.Resolve(43), invoke.ErrAlreadySettled)
	assert.ErrorIs(t, d.Reject(errors.New("late")), invoke.ErrAlreadySettled)

	v, err := d.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestDeferred_WaitCancelled(t *testing.T) {
	d := invoke.NewDeferred()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSlots_NoPendingSlot(t *testing.T) {
	s := invoke.NewSlots()
	assert.ErrorIs(t, s.Resolve("submitOrder", nil), invoke.ErrNoPendingSlot)
	assert.ErrorIs(t, s.Reject("submitOrder", errors.New("x")), invoke.ErrNoPendingSlot)
}

func TestSlots_SettledBeforeServiceStarts(t *testing.T) {
	s := invoke.NewSlots()
	s.Open("submitOrder")
	require.NoError(t, s.Resolve("submitOrder", "receipt"))

	v, err := s.Service("submitOrder")(context.Background(), domain.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, "receipt", v)
}

func TestSlots_TakenSlotIsNotReused(t *testing.T) {
	s := invoke.NewSlots()
	s.Open("submitOrder")
	require.NoError(t, s.Reject("submitOrder", errors.New("declined")))

	_, err := s.Service("submitOrder")(context.Background(), domain.Snapshot{})
	assert.EqualError(t, err, "declined")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Service("submitOrder")(ctx, domain.Snapshot{})
		done <- err
	}()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled, "a second invocation waits on a fresh slot")
}

func TestSlots_LateResolveIsNotInheritedByNextInstance(t *testing.T) {
	ctx := testContext(t)
	slots := invoke.NewSlots()
	def := testutils.OrderWorkflow()
	b := invoke.New(def, slots.Services(def.Invocations()...), invoke.WithLifecycleHooks(slots.Hooks()))
	defer b.Stop()

	toPlacingOrder(t, ctx, b)
	_, err := b.Send(ctx, domain.NewEvent(testutils.Cancel))
	require.NoError(t, err)

	// Settles the slot of the exited instance.
	require.NoError(t, slots.Resolve(testutils.SubmitOrder, "late"))

	_, err = b.Send(ctx, domain.NewEvent(testutils.AddToCart))
	require.NoError(t, err)
	snap, err := b.Send(ctx, domain.NewEvent(testutils.PlaceOrder))
	require.NoError(t, err)
	require.Equal(t, testutils.PlacingOrder, snap.State)

	assert.Never(t, func() bool { return b.Snapshot().State != testutils.PlacingOrder },
		100*time.Millisecond, 5*time.Millisecond, "the new instance waits for its own result")
	src, pending := b.Pending()
	assert.True(t, pending)
	assert.Equal(t, testutils.SubmitOrder, src)

	require.NoError(t, slots.Resolve(testutils.SubmitOrder, "fresh"))
	snap, err = b.AwaitSettled(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutils.Ordered, snap.State)
}

func TestSlots_OpenedSlotIsKeptForFirstInstance(t *testing.T) {
	ctx := testContext(t)
	slots := invoke.NewSlots()
	def := testutils.OrderWorkflow()
	b := invoke.New(def, slots.Services(def.Invocations()...), invoke.WithLifecycleHooks(slots.Hooks()))
	defer b.Stop()

	slots.Open(testutils.SubmitOrder)
	require.NoError(t, slots.Reject(testutils.SubmitOrder, errors.New("declined")))

	toPlacingOrder(t, ctx, b)
	snap, err := b.AwaitSettled(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutils.OrderFailed, snap.State)
}
