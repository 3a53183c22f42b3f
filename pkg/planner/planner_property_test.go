package planner_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/planner"
	"pgregory.net/rapid"
)

func boundedCounter(s domain.Snapshot) bool {
	return s.Context.Int("n") <= 2
}

// randomWorkflow draws a small workflow over events A, B and C whose
// transitions may count and may be guarded on the counter.
func randomWorkflow(t *rapid.T) *domain.Definition {
	n := rapid.IntRange(1, 4).Draw(t, "states")
	b := dsl.New("random").Context("n", 0)
	for i := 0; i < n; i++ {
		sb := b.State(fmt.Sprintf("s%d", i))
		m := rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("s%d.transitions", i))
		for j := 0; j < m; j++ {
			var opts []dsl.TransitionOption
			if rapid.Bool().Draw(t, fmt.Sprintf("s%d.%d.guard", i, j)) {
				opts = append(opts, dsl.Below("n", rapid.IntRange(1, 3).Draw(t, fmt.Sprintf("s%d.%d.limit", i, j))))
			}
			if rapid.Bool().Draw(t, fmt.Sprintf("s%d.%d.count", i, j)) {
				opts = append(opts, dsl.Increment("n"))
			}
			sb.On(
				rapid.SampledFrom([]string{"A", "B", "C"}).Draw(t, fmt.Sprintf("s%d.%d.event", i, j)),
				fmt.Sprintf("s%d", rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("s%d.%d.target", i, j))),
				opts...,
			)
		}
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("generated workflow is invalid: %v", err)
	}
	return def
}

func TestShortestPaths_Minimal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		def := randomWorkflow(t)
		filter := planner.WithFilter(boundedCounter)

		plans, err := planner.ShortestPaths(def, filter)
		if err != nil {
			t.Fatalf("ShortestPaths: %v", err)
		}
		g, err := planner.Explore(def, filter)
		if err != nil {
			t.Fatalf("Explore: %v", err)
		}

		dist := make(map[string]int, len(plans))
		for _, p := range plans {
			key := p.Target.Key()
			if _, dup := dist[key]; dup {
				t.Fatalf("two plans reach %s", key)
			}
			dist[key] = p.Path.Len()
		}
		if len(dist) != len(g.Nodes) {
			t.Fatalf("%d plans for %d reachable nodes", len(dist), len(g.Nodes))
		}
		// No edge may offer a shortcut: dist(to) <= dist(from)+1 characterises BFS distances.
		for _, e := range g.Edges {
			if dist[e.To] > dist[e.From]+1 {
				t.Fatalf("edge %s shortens %s from %d to %d", e.Transition, e.To, dist[e.To], dist[e.From]+1)
			}
		}
	})
}

func TestSimplePaths_NeverRevisit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		def := randomWorkflow(t)

		plans, err := planner.SimplePaths(def, planner.WithFilter(boundedCounter), planner.WithNodeLimit(500))
		if err != nil {
			t.Fatalf("SimplePaths: %v", err)
		}
		for _, p := range plans {
			seen := make(map[string]bool)
			for _, n := range p.Path.Nodes(def.InitialSnapshot()) {
				if seen[n.Key()] {
					t.Fatalf("%s revisits %s", p.Path.Description(), n.Key())
				}
				seen[n.Key()] = true
			}
			if !p.Target.Equal(p.Path.Nodes(def.InitialSnapshot())[p.Path.Len()]) {
				t.Fatalf("plan target does not match the end of its path")
			}
		}
	})
}
