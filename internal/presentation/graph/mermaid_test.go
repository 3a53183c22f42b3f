package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/testutils"
	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/dsl"
	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition(t *testing.T) {
	b := dsl.New("shapes").Initial("start")
	b.State("start").On("GO", "work-item", dsl.When(`ready == "yes"`, func(domain.Context, domain.Event) bool { return true }))
	b.State("work-item").Invoke("fetch").OnDone("done").OnError("start")
	b.State("done")
	def := b.MustBuild()

	tests := []struct {
		name     string
		contains string
	}{
		{"Initial Shape", `start(("start"))`},
		{"Invoking Shape And Sanitized Id", `work_item[["work-item <br/> ⚙️ fetch"]]`},
		{"Terminal Shape", `done(["done"])`},
		{"Guard Label Escaped", `start -- "GO [ready == 'yes']" --> work_item`},
		{"Done Edge Dotted", `work_item -. "done.invoke.fetch" .-> done`},
		{"Error Edge Dotted", `work_item -. "error.platform.fetch" .-> start`},
	}
	got := graph.Definition(def, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, got, tt.contains)
		})
	}
	assert.NotContains(t, got, "classDef")
}

func TestDefinition_CoverageOverlay(t *testing.T) {
	def := testutils.OrderWorkflow()
	report := &coverage.Report{UncoveredStates: []string{testutils.OrderFailed}}

	got := graph.Definition(def, graph.CoverageOverlay(def, report))
	assert.Contains(t, got, "class orderFailed uncovered;")
	assert.Contains(t, got, "class shopping visited;")
	assert.NotContains(t, got, "class orderFailed visited;")
}

func TestReachability(t *testing.T) {
	def := testutils.ElevatorWorkflow()
	g, err := planner.Explore(def)
	require.NoError(t, err)

	got := graph.Reachability(g)
	bottom := "n" + def.InitialSnapshot().Fingerprint()
	assert.Contains(t, got, bottom+`(("bottom <br/> {}"))`)
	assert.Equal(t, 2, strings.Count(got, " -- "), "one edge per fired transition")
}
