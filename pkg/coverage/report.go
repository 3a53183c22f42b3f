package coverage

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Criteria selects what a coverage check requires.
type Criteria int

const (
	// States requires every declared state to be visited.
	States Criteria = 1 << iota
	// Transitions requires every declared (source, event, target) triple to fire.
	Transitions

	// All requires both.
	All = States | Transitions
)

// Report is the coverage of one run.
type Report struct {
	RunID                string                 `json:"run_id"`
	Workflow             string                 `json:"workflow"`
	States               int                    `json:"states"`
	VisitedStates        int                    `json:"visited_states"`
	Transitions          int                    `json:"transitions"`
	VisitedTransitions   int                    `json:"visited_transitions"`
	UncoveredStates      []string               `json:"uncovered_states,omitempty"`
	UncoveredTransitions []domain.TransitionKey `json:"uncovered_transitions,omitempty"`
}

// StateCoverage is visited/declared states, in [0, 1].
func (r *Report) StateCoverage() float64 {
	return ratio(r.VisitedStates, r.States)
}

// TransitionCoverage is visited/declared transitions, in [0, 1].
func (r *Report) TransitionCoverage() float64 {
	return ratio(r.VisitedTransitions, r.Transitions)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 1
	}
	return float64(n) / float64(d)
}

// Check returns a *GapError when anything required by c is uncovered.
func (r *Report) Check(c Criteria) error {
	gap := &GapError{Workflow: r.Workflow}
	if c&States != 0 {
		gap.States = r.UncoveredStates
	}
	if c&Transitions != 0 {
		gap.Transitions = r.UncoveredTransitions
	}
	if len(gap.States) == 0 && len(gap.Transitions) == 0 {
		return nil
	}
	return gap
}

// Err is Check(All).
func (r *Report) Err() error {
	return r.Check(All)
}

// GapError lists what a run left uncovered.
type GapError struct {
	Workflow    string
	States      []string
	Transitions []domain.TransitionKey
}

func (e *GapError) Error() string {
	var parts []string
	if len(e.States) > 0 {
		parts = append(parts, fmt.Sprintf("uncovered states [%s]", strings.Join(e.States, ", ")))
	}
	if len(e.Transitions) > 0 {
		keys := make([]string, len(e.Transitions))
		for i, k := range e.Transitions {
			keys[i] = k.String()
		}
		parts = append(parts, fmt.Sprintf("uncovered transitions [%s]", strings.Join(keys, ", ")))
	}
	return fmt.Sprintf("coverage gap in %q: %s", e.Workflow, strings.Join(parts, "; "))
}
