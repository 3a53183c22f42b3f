/*
Package waypoint runs declarative finite-state workflows and tests them against their own model.

A workflow is a Definition of states, guarded transitions and invocations. The same
Definition drives three things: a live interpreter (pkg/invoke) that runs invocations
asynchronously and discards results from states that have already been exited, a
planner (pkg/planner) that enumerates the event sequences reaching every (state, context)
node, and an executor (pkg/executor) that replays those sequences against any target
and records which states and transitions were exercised.

# Concept

A test model pairs the Definition with two kinds of hooks:

  - Exec hooks perform an event against the system under test.
  - Assert hooks check that the system is in the state the plan expects.

Plans are generated once and each is executed against a fresh target, so failures are
isolated per plan. Coverage is computed across the whole run.

# Usage

The Suite bundles a model, planner settings and an executor. ForBridge tests a workflow
against its own interpreter, which is how a workflow's declared behaviour is checked before
a real implementation exists:

	b := dsl.New("elevator").Initial("bottom")
	b.State("bottom").On("GO_UP", "top")
	b.State("top").On("GO_DOWN", "bottom")

	suite, err := waypoint.ForBridge(b.MustBuild())
	if err != nil {
		log.Fatal(err)
	}
	plans, err := suite.Plans()
	if err != nil {
		log.Fatal(err)
	}
	suite.Test(t, plans)

Against a real system, build the model with model.New, register Exec and Assert hooks,
and pass a TargetFactory that creates the system under test for each plan.

# Workflow documents

Workflows can also be written in YAML and loaded with pkg/loader; the waypoint command
validates, plans, serves and runs them. See cmd/waypoint.
*/
package waypoint
