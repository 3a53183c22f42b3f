// Package graph renders workflows as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/planner"
)

// Overlay marks states on the diagram.
type Overlay struct {
	Visited   []string
	Uncovered []string
	Current   string
}

// CoverageOverlay marks every declared state as visited or uncovered.
func CoverageOverlay(def *domain.Definition, r *coverage.Report) *Overlay {
	uncovered := make(map[string]bool, len(r.UncoveredStates))
	for _, s := range r.UncoveredStates {
		uncovered[s] = true
	}
	o := &Overlay{Uncovered: r.UncoveredStates}
	for _, id := range def.StateIDs() {
		if !uncovered[id] {
			o.Visited = append(o.Visited, id)
		}
	}
	return o
}

// Definition produces a flowchart of def's states and transitions.
// Shapes: initial ((circle)), invoking [[subroutine]], terminal ([stadium]),
// otherwise [rectangle]. Invocation outcomes are drawn dotted.
func Definition(def *domain.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, st := range def.States() {
		id := sanitizeID(st.ID)
		label := st.ID
		opener, closer := "[", "]"
		switch {
		case st.ID == def.Initial():
			opener, closer = "((", "))"
		case st.Invoke != nil:
			opener, closer = "[[", "]]"
		case st.Terminal():
			opener, closer = "([", "])"
		}
		if st.Invoke != nil {
			label = fmt.Sprintf("%s <br/> ⚙️ %s", st.ID, st.Invoke.Src)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(label), closer)

		for _, t := range st.Transitions {
			text := t.Event
			if t.Guard != nil && t.Guard.Name != "" {
				text = fmt.Sprintf("%s [%s]", t.Event, t.Guard.Name)
			}
			if domain.KindOf(t.Event) == domain.EventExternal {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, escape(text), sanitizeID(t.Target))
			} else {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", id, escape(text), sanitizeID(t.Target))
			}
		}
	}

	writeOverlay(&sb, overlay)
	return sb.String()
}

// Reachability produces a flowchart of the explored (state, context) nodes.
// Node ids are snapshot fingerprints.
func Reachability(g *planner.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	ids := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		id := "n" + n.Fingerprint()
		ids[n.Key()] = id
		opener, closer := "[", "]"
		if n.Equal(g.Initial) {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", id, opener, escape(n.State), escape(n.Context.String()), closer)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", ids[e.From], escape(e.Event.Label()), ids[e.To])
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, overlay *Overlay) {
	if overlay == nil {
		return
	}
	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text keeps labels readable on light fills in both themes.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef uncovered fill:#ffebee,stroke:#c62828,stroke-width:2px,stroke-dasharray:4,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	classify(sb, overlay.Visited, "visited")
	classify(sb, overlay.Uncovered, "uncovered")
	if overlay.Current != "" {
		fmt.Fprintf(sb, "    class %s current;\n", sanitizeID(overlay.Current))
	}
}

func classify(sb *strings.Builder, states []string, class string) {
	seen := make(map[string]bool)
	for _, s := range states {
		id := sanitizeID(s)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		fmt.Fprintf(sb, "    class %s %s;\n", id, class)
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

func sanitizeID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
