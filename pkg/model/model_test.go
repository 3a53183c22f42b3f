package model_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/waypoint/internal/testutils"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/model"
	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type screen struct {
	floor int
	log   []string
}

func TestModel_HooksDoNotTouchDefinition(t *testing.T) {
	def := testutils.ElevatorWorkflow()
	before := def.Events()

	m, err := model.New[*screen](def).
		Exec("GO_UP", func(_ context.Context, x *model.Execution[*screen], ev domain.Event) error {
			x.Target.floor = 2
			x.Target.log = append(x.Target.log, ev.Name)
			return nil
		}).
		Assert("top", func(_ context.Context, x *model.Execution[*screen]) error {
			if x.Target.floor != 2 {
				return errors.New("not on floor 2")
			}
			return nil
		}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, before, def.Events())
	assert.Same(t, def, m.Definition())

	x := model.NewExecution[*screen]("x1", planner.Plan{}, def.InitialSnapshot())
	x.Target = &screen{floor: 1}
	require.NoError(t, m.Exec(context.Background(), x, domain.NewEvent("GO_UP")))
	assert.Equal(t, []string{"GO_UP"}, x.Target.log)

	checked, err := m.Assert(context.Background(), x, "top")
	assert.True(t, checked)
	assert.NoError(t, err)

	checked, err = m.Assert(context.Background(), x, "bottom")
	assert.False(t, checked, "states without an assertion are skipped")
	assert.NoError(t, err)

	assert.NoError(t, m.Exec(context.Background(), x, domain.NewEvent("GO_DOWN")), "missing exec hook is a no-op")
}

func TestModel_UnknownHookNames(t *testing.T) {
	_, err := model.New[*screen](testutils.ElevatorWorkflow()).
		Assert("basement", func(context.Context, *model.Execution[*screen]) error { return nil }).
		Exec("TELEPORT", func(context.Context, *model.Execution[*screen], domain.Event) error { return nil }).
		Build()
	require.Error(t, err)

	var defErr *domain.DefinitionError
	require.True(t, errors.As(err, &defErr))
	assert.True(t, defErr.Has(model.IssueUnknownHookState))
	assert.True(t, defErr.Has(model.IssueUnknownHookEvent))
}

func TestModel_EventsExpandCases(t *testing.T) {
	m, err := model.New[*screen](testutils.OrderWorkflow()).
		Cases(testutils.PlaceOrder, "card", "cash").
		Cases("error.platform.submitOrder", errors.New("declined")).
		Build()
	require.NoError(t, err)

	var labels []string
	for _, ev := range m.Events() {
		labels = append(labels, ev.Label())
	}
	assert.Equal(t, []string{
		"ADD_TO_CART",
		`PLACE_ORDER ("card")`,
		`PLACE_ORDER ("cash")`,
		"CANCEL",
		"CONTINUE_SHOPPING",
		"done.invoke.submitOrder",
		`error.platform.submitOrder ("declined")`,
	}, labels)
}
