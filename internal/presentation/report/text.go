package report

import (
	"fmt"
	"io"

	"github.com/aretw0/waypoint/pkg/executor"
	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/muesli/termenv"
)

// Printer writes line-oriented output, coloured when the profile allows it.
type Printer struct {
	out     *termenv.Output
	profile termenv.Profile
}

// NewPrinter writes to w. When color is false no escape sequences are written.
func NewPrinter(w io.Writer, color bool) *Printer {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	return &Printer{out: termenv.NewOutput(w, termenv.WithProfile(profile)), profile: profile}
}

func (p *Printer) paint(s, color string) termenv.Style {
	return p.out.String(s).Foreground(p.profile.Color(color))
}

// Plans prints one line per plan followed by its steps.
func (p *Printer) Plans(plans []planner.Plan) {
	for i, plan := range plans {
		fmt.Fprintf(p.out, "%3d. %s\n", i+1, p.paint(plan.Description, "12"))
		fmt.Fprintf(p.out, "     %s\n", plan.Path.Description())
	}
}

// Run prints one line per plan result and a coverage summary.
func (p *Printer) Run(r *executor.Report) {
	for _, res := range r.Results {
		fmt.Fprintf(p.out, "%s %s\n", p.status(res.Status), res.Plan.Name())
		if res.Err != nil {
			fmt.Fprintf(p.out, "       %s\n", p.paint(res.Err.Error(), "9"))
		}
	}
	fmt.Fprintf(p.out, "\n%d passed, %d failed, %d aborted\n",
		r.Count(executor.StatusPassed), r.Count(executor.StatusFailed), r.Count(executor.StatusAborted))
	if c := r.Coverage; c != nil {
		fmt.Fprintf(p.out, "states %d/%d, transitions %d/%d\n",
			c.VisitedStates, c.States, c.VisitedTransitions, c.Transitions)
		for _, s := range c.UncoveredStates {
			fmt.Fprintf(p.out, "  %s state %s\n", p.paint("uncovered", "11"), s)
		}
		for _, k := range c.UncoveredTransitions {
			fmt.Fprintf(p.out, "  %s transition %s\n", p.paint("uncovered", "11"), k)
		}
	}
}

func (p *Printer) status(s executor.Status) termenv.Style {
	switch s {
	case executor.StatusPassed:
		return p.paint("PASS ", "10")
	case executor.StatusFailed:
		return p.paint("FAIL ", "9")
	default:
		return p.paint("ABORT", "11")
	}
}
