/*
Package invoke runs the asynchronous invocations bound to workflow states.

A Bridge is a live, per-execution interpreter around the transition engine.
Entering a state that declares an invocation starts the registered Service in
its own goroutine. Its outcome is routed back through the engine as the
synthetic event done.invoke.<src> or error.platform.<src>.

Each state entry mints a new instance token. When a fired transition exits the
state before the service settles, the service context is cancelled and any late
result is discarded as stale: it is logged at debug level, reported through
OnInvocationStale and never causes a transition.

Deferred and Slots let tests and remote clients control exactly when an
invocation settles:

	slots := invoke.NewSlots()
	bridge := invoke.New(def, slots.Services(def.Invocations()...))

	slots.Open("submitOrder")
	bridge.Send(ctx, domain.NewEvent("PLACE_ORDER"))
	slots.Resolve("submitOrder", receipt)
	snap, err := bridge.AwaitSettled(ctx)
*/
package invoke
