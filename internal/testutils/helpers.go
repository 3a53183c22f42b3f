// Package testutils holds workflow fixtures shared by the package tests.
package testutils

import (
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
)

// Order state and event names.
const (
	Shopping     = "shopping"
	Cart         = "cart"
	PlacingOrder = "placingOrder"
	OrderFailed  = "orderFailed"
	Ordered      = "ordered"

	AddToCart        = "ADD_TO_CART"
	PlaceOrder       = "PLACE_ORDER"
	Cancel           = "CANCEL"
	ContinueShopping = "CONTINUE_SHOPPING"

	SubmitOrder = "submitOrder"
)

// OrderWorkflow is the shop checkout workflow with its three counters.
// placingOrder can be cancelled so that a late submit result becomes stale.
func OrderWorkflow() *domain.Definition {
	b := dsl.New("order").
		Initial(Shopping).
		Context("cartsCanceled", 0).
		Context("ordersCompleted", 0).
		Context("ordersFailed", 0)

	b.State(Shopping).
		On(AddToCart, Cart)
	b.State(Cart).
		On(PlaceOrder, PlacingOrder).
		On(Cancel, Shopping, dsl.Increment("cartsCanceled"))
	b.State(PlacingOrder).
		Invoke(SubmitOrder).
		OnDone(Ordered).
		OnError(OrderFailed, dsl.Increment("ordersFailed")).
		On(Cancel, Shopping)
	b.State(OrderFailed).
		On(PlaceOrder, PlacingOrder).
		On(Cancel, Shopping, dsl.Increment("cartsCanceled"))
	b.State(Ordered).
		On(ContinueShopping, Shopping, dsl.Increment("ordersCompleted"))

	return b.MustBuild()
}

// OrderFilter bounds the order workflow to at most one of each counted outcome.
func OrderFilter(s domain.Snapshot) bool {
	return s.Context.Int("ordersCompleted") <= 1 &&
		s.Context.Int("ordersFailed") <= 1 &&
		s.Context.Int("cartsCanceled") <= 1
}

// ElevatorWorkflow is the two-floor elevator.
func ElevatorWorkflow() *domain.Definition {
	b := dsl.New("elevator").Initial("bottom")
	b.State("bottom").On("GO_UP", "top")
	b.State("top").On("GO_DOWN", "bottom")
	return b.MustBuild()
}

// CounterWorkflow loops on INC while n is below limit and then moves to full.
func CounterWorkflow(limit int) *domain.Definition {
	b := dsl.New("counter").Context("n", 0)
	b.State("idle").
		On("INC", "idle", dsl.Below("n", limit), dsl.Increment("n")).
		On("INC", "full").
		On("NOOP", "idle")
	b.State("full").
		On("RESET", "idle", dsl.Set("n", 0))
	return b.MustBuild()
}

// FulfilmentWorkflow chains two invocations: settling charge enters shipping,
// which immediately starts dispatch.
func FulfilmentWorkflow() *domain.Definition {
	b := dsl.New("fulfilment").Initial("idle")
	b.State("idle").On("CHECKOUT", "charging")
	b.State("charging").
		Invoke("charge").
		OnDone("shipping").
		OnError("idle")
	b.State("shipping").
		Invoke("dispatch").
		OnDone("delivered")
	b.State("delivered")
	return b.MustBuild()
}
