/*
Package domain contains the core model of a waypoint workflow.

It defines the static description of a finite-state workflow and the values the
engine moves between. This package is kept pure and free of I/O, following the
same hexagonal split as the rest of the module.

# Key Entities

  - Definition: the immutable workflow (states, transitions, invocations, initial context).
  - State / Transition: nodes and event-triggered edges, with optional Guard and ordered Actions.
  - Context: immutable extended state; every update returns a new value.
  - Event: a named signal, tagged external, done or error.
  - Snapshot: a (state, context) pair; its Key is the node identity used by the planner.
  - LifecycleHooks: optional observability callbacks shared by the bridge and the executor.
*/
package domain
