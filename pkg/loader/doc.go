/*
Package loader reads workflow documents into domain definitions.

Documents are YAML (JSON is accepted as YAML). States and the events of each
state keep the order they are written in, which is the order guards are tried
and events are enumerated by the planner.

	id: order
	initial: shopping
	context: {cartsCanceled: 0}
	contextSchema: {cartsCanceled: int}
	states:
	  shopping:
	    on: {ADD_TO_CART: cart}
	  cart:
	    on:
	      CANCEL: {target: shopping, actions: [{increment: cartsCanceled}]}
	      PLACE_ORDER:
	        - {target: placingOrder, guard: "cartsCanceled < 3"}
	        - shopping
	  placingOrder:
	    invoke: {src: submitOrder, onDone: ordered, onError: shopping}

A transition is a target name, a {target, guard, actions} object, or a list of
either. Guards name a Registry entry or are a condition "<key> <op> <literal>";
keys prefixed with "payload." read the event payload. Actions name a Registry
entry or are one of {increment: key}, {decrement: key}, {set: {key: value}}.
*/
package loader
