/*
Package executor replays test plans against a system under test.

Every plan runs in its own Execution with its own target and invocation slots.
The executor asserts the start node, then for each step runs the event's exec
hook followed by the arrival state's assertion hook, strictly in sequence. A
failing exec hook aborts the plan; a failing assertion fails it. Neither
affects other plans, and coverage is computed once across all of them.
*/
package executor
