/*
Package dsl provides a Go DSL for programmatically constructing waypoint workflows.

It is the code-first counterpart of the YAML loader: states are declared with a
fluent builder, transitions take optional guards and actions, and Build freezes
the result into a validated domain.Definition.

Example usage:

	b := dsl.New("order").
		Initial("shopping").
		Context("cartsCanceled", 0)

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
*/
package dsl
