package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/executor"
	"github.com/aretw0/waypoint/pkg/planner"
)

// PlansMarkdown lists plans with their steps.
func PlansMarkdown(workflow string, plans []planner.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Plans for `%s`\n\n", workflow)
	fmt.Fprintf(&sb, "%d plans.\n\n", len(plans))
	for i, p := range plans {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, cell(p.Description))
		fmt.Fprintf(&sb, "_%s_\n\n", cell(p.Path.Description()))
		if p.Path.Len() == 0 {
			continue
		}
		sb.WriteString("| # | Event | From | To |\n|---|---|---|---|\n")
		for j, s := range p.Path.Steps {
			fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n", j+1, cell(s.Event.Label()), s.From.State, s.To.State)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RunMarkdown summarizes a run: one row per plan, then coverage.
func RunMarkdown(r *executor.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run `%s` of `%s`\n\n", r.ID, r.Workflow)
	fmt.Fprintf(&sb, "**%d passed**, **%d failed**, **%d aborted** in %s.\n\n",
		r.Count(executor.StatusPassed), r.Count(executor.StatusFailed), r.Count(executor.StatusAborted), r.Duration.Round(time.Millisecond))

	sb.WriteString("| Status | Plan | Steps | Error |\n|---|---|---|---|\n")
	for _, res := range r.Results {
		fmt.Fprintf(&sb, "| %s | %s | %d/%d | %s |\n",
			statusIcon(res.Status), cell(res.Plan.Name()), res.Steps, res.Plan.Path.Len(), cell(res.Error))
	}
	sb.WriteString("\n")
	if r.Coverage != nil {
		sb.WriteString(CoverageMarkdown(r.Coverage))
	}
	return sb.String()
}

// CoverageMarkdown renders coverage ratios and what was left uncovered.
func CoverageMarkdown(c *coverage.Report) string {
	var sb strings.Builder
	sb.WriteString("## Coverage\n\n")
	fmt.Fprintf(&sb, "- States: %d/%d (%.0f%%)\n", c.VisitedStates, c.States, 100*c.StateCoverage())
	fmt.Fprintf(&sb, "- Transitions: %d/%d (%.0f%%)\n", c.VisitedTransitions, c.Transitions, 100*c.TransitionCoverage())
	if len(c.UncoveredStates) > 0 {
		sb.WriteString("\nUncovered states:\n\n")
		for _, s := range c.UncoveredStates {
			fmt.Fprintf(&sb, "- `%s`\n", s)
		}
	}
	if len(c.UncoveredTransitions) > 0 {
		sb.WriteString("\nUncovered transitions:\n\n")
		for _, k := range c.UncoveredTransitions {
			fmt.Fprintf(&sb, "- `%s`\n", k)
		}
	}
	return sb.String()
}

func statusIcon(s executor.Status) string {
	switch s {
	case executor.StatusPassed:
		return "✅ passed"
	case executor.StatusFailed:
		return "❌ failed"
	default:
		return "⚠️ aborted"
	}
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
