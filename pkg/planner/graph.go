package planner

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Edge is a fired transition between two discovered nodes.
type Edge struct {
	From       string               `json:"from"`
	To         string               `json:"to"`
	Event      domain.Event         `json:"event"`
	Transition domain.TransitionKey `json:"transition"`
}

// Graph is the reachability graph of a workflow under a filter.
type Graph struct {
	Initial domain.Snapshot   `json:"initial"`
	Nodes   []domain.Snapshot `json:"nodes"`
	Edges   []Edge            `json:"edges"`
}

// Explore builds the reachability graph breadth-first. Nodes are keyed by
// Snapshot.Key and listed in discovery order.
func Explore(def *domain.Definition, opts ...Option) (*Graph, error) {
	cfg := newConfig(def, opts)
	engine := runtime.NewEngine(def, runtime.WithLogger(cfg.logger))

	start := engine.Initial().Snapshot
	g := &Graph{Initial: start, Nodes: []domain.Snapshot{start}}
	seen := map[string]bool{start.Key(): true}

	for i := 0; i < len(g.Nodes); i++ {
		current := g.Nodes[i]
		for _, ev := range cfg.events {
			res, err := engine.Transition(current, ev)
			if err != nil {
				return nil, err
			}
			if !res.Changed() || !cfg.keep(res.Snapshot) {
				continue
			}
			key := res.Snapshot.Key()
			g.Edges = append(g.Edges, Edge{
				From:       current.Key(),
				To:         key,
				Event:      ev,
				Transition: res.Fired.Key(),
			})
			if seen[key] {
				continue
			}
			seen[key] = true
			g.Nodes = append(g.Nodes, res.Snapshot)
			if cfg.nodeLimit > 0 && len(g.Nodes) > cfg.nodeLimit {
				return nil, fmt.Errorf("%w: more than %d nodes", ErrNodeLimit, cfg.nodeLimit)
			}
		}
	}
	return g, nil
}

// States returns the distinct state ids reached, in discovery order.
func (g *Graph) States() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range g.Nodes {
		if !seen[n.State] {
			seen[n.State] = true
			out = append(out, n.State)
		}
	}
	return out
}

// Transitions returns the distinct transition triples exercised by the graph's edges.
func (g *Graph) Transitions() []domain.TransitionKey {
	seen := make(map[domain.TransitionKey]bool)
	var out []domain.TransitionKey
	for _, e := range g.Edges {
		if !seen[e.Transition] {
			seen[e.Transition] = true
			out = append(out, e.Transition)
		}
	}
	return out
}

// Unreachable lists the states of def that the graph never reaches.
func (g *Graph) Unreachable(def *domain.Definition) []string {
	reached := make(map[string]bool)
	for _, s := range g.States() {
		reached[s] = true
	}
	var out []string
	for _, id := range def.StateIDs() {
		if !reached[id] {
			out = append(out, id)
		}
	}
	return out
}
