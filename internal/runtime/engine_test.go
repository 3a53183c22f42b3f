package runtime_test

import (
	"errors"
	"testing"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/internal/testutils"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Initial(t *testing.T) {
	engine := runtime.NewEngine(testutils.OrderWorkflow())

	res := engine.Initial()
	assert.Equal(t, testutils.Shopping, res.Snapshot.State)
	assert.Equal(t, 0, res.Snapshot.Context.Int("cartsCanceled"))
	assert.Nil(t, res.Invoke)
	assert.False(t, res.Changed())
}

func TestEngine_Transition(t *testing.T) {
	engine := runtime.NewEngine(testutils.OrderWorkflow())
	start := engine.Initial().Snapshot

	tests := []struct {
		name       string
		from       domain.Snapshot
		event      domain.Event
		wantState  string
		wantFired  bool
		wantInvoke string
		wantCtx    map[string]int
	}{
		{
			name:      "Plain Transition",
			from:      start,
			event:     domain.NewEvent(testutils.AddToCart),
			wantState: testutils.Cart,
			wantFired: true,
		},
		{
			name:      "Action Updates Context",
			from:      domain.Snapshot{State: testutils.Cart, Context: start.Context},
			event:     domain.NewEvent(testutils.Cancel),
			wantState: testutils.Shopping,
			wantFired: true,
			wantCtx:   map[string]int{"cartsCanceled": 1},
		},
		{
			name:       "Entering Invoking State",
			from:       domain.Snapshot{State: testutils.Cart, Context: start.Context},
			event:      domain.NewEvent(testutils.PlaceOrder),
			wantState:  testutils.PlacingOrder,
			wantFired:  true,
			wantInvoke: testutils.SubmitOrder,
		},
		{
			name:      "Error Event Routes To Handler",
			from:      domain.Snapshot{State: testutils.PlacingOrder, Context: start.Context},
			event:     domain.ErrorEvent(testutils.SubmitOrder, errors.New("declined")),
			wantState: testutils.OrderFailed,
			wantFired: true,
			wantCtx:   map[string]int{"ordersFailed": 1},
		},
		{
			name:      "Ignored Event",
			from:      start,
			event:     domain.NewEvent(testutils.PlaceOrder),
			wantState: testutils.Shopping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.Transition(tt.from, tt.event)
			require.NoError(t, err)

			assert.Equal(t, tt.wantState, res.Snapshot.State)
			assert.Equal(t, tt.wantFired, res.Changed())
			if tt.wantInvoke == "" {
				assert.Nil(t, res.Invoke)
			} else {
				require.NotNil(t, res.Invoke)
				assert.Equal(t, tt.wantInvoke, res.Invoke.Src)
				assert.Equal(t, tt.wantState, res.Invoke.State)
			}
			for k, v := range tt.wantCtx {
				assert.Equal(t, v, res.Snapshot.Context.Int(k), k)
			}
			if !tt.wantFired {
				assert.True(t, res.Snapshot.Equal(tt.from))
			}
		})
	}
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	engine := runtime.NewEngine(testutils.OrderWorkflow())
	from := domain.Snapshot{State: testutils.Cart, Context: domain.NewContext(map[string]any{"cartsCanceled": 0})}
	before := from.Key()

	_, err := engine.Transition(from, domain.NewEvent(testutils.Cancel))
	require.NoError(t, err)

	assert.Equal(t, before, from.Key())
}

func TestEngine_ActionsObservePredecessors(t *testing.T) {
	b := dsl.New("chain").Context("n", 1)
	b.State("a").On("GO", "a",
		dsl.Do("double", func(ctx domain.Context, _ domain.Event) domain.Patch {
			return domain.Patch{"n": ctx.Int("n") * 2}
		}),
		dsl.Increment("n"),
		dsl.Set("tag", "done"),
	)
	engine := runtime.NewEngine(b.MustBuild())

	res, err := engine.Transition(engine.Initial().Snapshot, domain.NewEvent("GO"))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Snapshot.Context.Int("n"))
	tag, _ := res.Snapshot.Context.Get("tag")
	assert.Equal(t, "done", tag)
}

func TestEngine_GuardReadsPayload(t *testing.T) {
	b := dsl.New("pay")
	b.State("due").
		On("PAY", "paid", dsl.When("enough", func(_ domain.Context, ev domain.Event) bool {
			amount, ok := domain.PayloadAs[int](ev)
			return ok && amount >= 10
		})).
		On("PAY", "partial")
	b.State("paid")
	b.State("partial")
	engine := runtime.NewEngine(b.MustBuild())
	start := engine.Initial().Snapshot

	res, err := engine.Transition(start, domain.NewEvent("PAY", 12))
	require.NoError(t, err)
	assert.Equal(t, "paid", res.Snapshot.State)

	res, err = engine.Transition(start, domain.NewEvent("PAY", 3))
	require.NoError(t, err)
	assert.Equal(t, "partial", res.Snapshot.State)
}

func TestEngine_UnknownState(t *testing.T) {
	engine := runtime.NewEngine(testutils.ElevatorWorkflow())

	_, err := engine.Transition(domain.Snapshot{State: "basement"}, domain.NewEvent("GO_UP"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownState))
}
