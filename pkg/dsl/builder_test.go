package dsl_test

import (
	"errors"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_OrderFlow(t *testing.T) {
	b := dsl.New("order").Context("cartsCanceled", 0)

	b.State("shopping").
		On("ADD_TO_CART", "cart")
	b.State("cart").
		On("PLACE_ORDER", "placingOrder").
		On("CANCEL", "shopping", dsl.Increment("cartsCanceled"))
	b.State("placingOrder").
		Invoke("submitOrder").
		OnDone("ordered").
		OnError("cart")
	b.State("ordered")

	def, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "shopping", def.Initial(), "first declared state is the default initial")
	assert.Equal(t, []string{"shopping", "cart", "placingOrder", "ordered"}, def.StateIDs())

	placing, ok := def.State("placingOrder")
	require.True(t, ok)
	require.NotNil(t, placing.Invoke)
	assert.Equal(t, "submitOrder", placing.Invoke.Src)
	assert.Len(t, placing.On("done.invoke.submitOrder"), 1)
	assert.Len(t, placing.On("error.platform.submitOrder"), 1)

	cart, _ := def.State("cart")
	cancel := cart.On("CANCEL")[0]
	next := cancel.Apply(def.InitialContext(), domain.NewEvent("CANCEL"))
	assert.Equal(t, 1, next.Int("cartsCanceled"))
}

func TestBuilder_StateIsIdempotent(t *testing.T) {
	b := dsl.New("wf")
	b.State("a").On("GO", "b")
	b.State("b")
	b.State("a").On("BACK", "a")

	def, err := b.Build()
	require.NoError(t, err)

	a, _ := def.State("a")
	assert.Equal(t, []string{"GO", "BACK"}, a.Events())
	assert.Equal(t, []string{"a", "b"}, def.StateIDs())
}

func TestBuilder_GuardsAndActions(t *testing.T) {
	b := dsl.New("counter").Context("n", 0)
	b.State("idle").
		On("INC", "idle", dsl.Below("n", 2), dsl.Increment("n")).
		On("INC", "full")
	b.State("full").
		On("RESET", "idle", dsl.Set("n", 0))

	def := b.MustBuild()
	idle, _ := def.State("idle")
	candidates := idle.On("INC")
	require.Len(t, candidates, 2)
	assert.Equal(t, "n < 2", candidates[0].Guard.Name)
	assert.True(t, candidates[0].Allows(domain.NewContext(map[string]any{"n": 1}), domain.NewEvent("INC")))
	assert.False(t, candidates[0].Allows(domain.NewContext(map[string]any{"n": 2}), domain.NewEvent("INC")))
	assert.Nil(t, candidates[1].Guard)
}

func TestBuilder_InvalidTarget(t *testing.T) {
	b := dsl.New("broken")
	b.State("a").On("GO", "missing")

	_, err := b.Build()
	require.Error(t, err)

	var defErr *domain.DefinitionError
	require.True(t, errors.As(err, &defErr))
	assert.True(t, defErr.Has(domain.IssueInvalidTarget))
}
