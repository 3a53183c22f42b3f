package report_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/report"
	"github.com/aretw0/waypoint/internal/testutils"
	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/executor"
	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elevatorPlans(t *testing.T) []planner.Plan {
	t.Helper()
	plans, err := planner.ShortestPaths(testutils.ElevatorWorkflow())
	require.NoError(t, err)
	return plans
}

func sampleRun(t *testing.T) *executor.Report {
	plans := elevatorPlans(t)
	return &executor.Report{
		ID:       "run-1",
		Workflow: "elevator",
		Results: []executor.PlanResult{
			{Plan: plans[0], Status: executor.StatusPassed},
			{Plan: plans[1], Status: executor.StatusFailed, Err: errors.New("display | stuck"), Error: "display | stuck"},
		},
		Coverage: &coverage.Report{
			States: 2, VisitedStates: 1, Transitions: 2, VisitedTransitions: 0,
			UncoveredStates:      []string{"top"},
			UncoveredTransitions: []domain.TransitionKey{{Source: "bottom", Event: "GO_UP", Target: "top"}},
		},
	}
}

func TestPlansMarkdown(t *testing.T) {
	md := report.PlansMarkdown("elevator", elevatorPlans(t))
	assert.Contains(t, md, "# Plans for `elevator`")
	assert.Contains(t, md, `## 2. reaches state: "top" ({})`)
	assert.Contains(t, md, "_via GO_UP_")
	assert.Contains(t, md, "| 1 | `GO_UP` | bottom | top |")
}

func TestRunMarkdown(t *testing.T) {
	md := report.RunMarkdown(sampleRun(t))
	assert.Contains(t, md, "**1 passed**, **1 failed**, **0 aborted**")
	assert.Contains(t, md, `display \| stuck`, "pipes are escaped inside tables")
	assert.Contains(t, md, "- States: 1/2 (50%)")
	assert.Contains(t, md, "- `bottom --GO_UP--> top`")
}

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	report.NewPrinter(&buf, false).Run(sampleRun(t))

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "no escape sequences without colour")
	assert.Contains(t, out, "FAIL  reaches state: \"top\" ({}) via GO_UP")
	assert.Contains(t, out, "1 passed, 1 failed, 0 aborted")
	assert.Contains(t, out, "uncovered transition bottom --GO_UP--> top")
}

func TestPrinter_Plans(t *testing.T) {
	var buf bytes.Buffer
	report.NewPrinter(&buf, false).Plans(elevatorPlans(t))
	assert.Contains(t, buf.String(), "via (initial state)")
}

func TestNewRenderer_Plain(t *testing.T) {
	out, err := report.NewRenderer(false)("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}
