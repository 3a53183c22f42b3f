/*
Package model attaches probe hooks to a workflow definition.

A Model pairs the immutable domain.Definition with two kinds of hooks, both
generic over the target type T:

  - exec hooks, one per event name, drive the system under test;
  - assertion hooks, one per state id, fail when the target is not observably
    in that state.

The definition itself is never modified. Per-execution state lives in an
Execution passed by pointer to every hook.
*/
package model
