package planner

import (
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Step is one event to send, the node it departs from and the node it must reach.
type Step struct {
	Event domain.Event    `json:"event"`
	From  domain.Snapshot `json:"from"`
	To    domain.Snapshot `json:"to"`
}

// Transition is the (source, event, target) triple the step exercises.
func (s Step) Transition() domain.TransitionKey {
	return domain.TransitionKey{Source: s.From.State, Event: s.Event.Name, Target: s.To.State}
}

// Path is an ordered sequence of steps starting at the initial node.
type Path struct {
	Steps []Step `json:"steps"`
}

// Len returns the number of steps.
func (p Path) Len() int { return len(p.Steps) }

// Description renders the route, e.g. "via ADD_TO_CART → PLACE_ORDER".
func (p Path) Description() string {
	if len(p.Steps) == 0 {
		return "via (initial state)"
	}
	labels := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		labels[i] = s.Event.Label()
	}
	return "via " + strings.Join(labels, " → ")
}

// Nodes returns every node on the path, starting with start.
func (p Path) Nodes(start domain.Snapshot) []domain.Snapshot {
	nodes := make([]domain.Snapshot, 0, len(p.Steps)+1)
	nodes = append(nodes, start)
	for _, s := range p.Steps {
		nodes = append(nodes, s.To)
	}
	return nodes
}

// Plan is a path to a target node plus a human-readable description of it.
// Plans are read-only once generated.
type Plan struct {
	Target      domain.Snapshot `json:"target"`
	Description string          `json:"description"`
	Path        Path            `json:"path"`
}

// Name identifies the plan in reports and subtest names.
func (p Plan) Name() string {
	return p.Description + " " + p.Path.Description()
}

func newPlan(target domain.Snapshot, steps []Step) Plan {
	return Plan{
		Target:      target,
		Description: target.Describe(),
		Path:        Path{Steps: steps},
	}
}
