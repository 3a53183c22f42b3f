package planner

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
)

type node struct {
	snap   domain.Snapshot
	parent string
	via    *Step
}

// ShortestPaths returns one Plan per reachable node, each following a
// minimum-length event sequence. Ties are broken by event enumeration order.
// Plans are ordered by discovery, so the initial node's empty plan comes first.
func ShortestPaths(def *domain.Definition, opts ...Option) ([]Plan, error) {
	cfg := newConfig(def, opts)
	engine := runtime.NewEngine(def, runtime.WithLogger(cfg.logger))

	start := engine.Initial().Snapshot
	nodes := map[string]*node{start.Key(): {snap: start}}
	order := []string{start.Key()}

	for i := 0; i < len(order); i++ {
		current := nodes[order[i]]
		for _, ev := range cfg.events {
			res, err := engine.Transition(current.snap, ev)
			if err != nil {
				return nil, err
			}
			if !res.Changed() {
				continue
			}
			key := res.Snapshot.Key()
			if _, seen := nodes[key]; seen || !cfg.keep(res.Snapshot) {
				continue
			}
			nodes[key] = &node{
				snap:   res.Snapshot,
				parent: order[i],
				via:    &Step{Event: ev, From: current.snap, To: res.Snapshot},
			}
			order = append(order, key)
			cfg.logger.Debug("node discovered", "state", res.Snapshot.State, "depth", depth(nodes, key))
			if cfg.nodeLimit > 0 && len(order) > cfg.nodeLimit {
				return nil, fmt.Errorf("%w: more than %d nodes", ErrNodeLimit, cfg.nodeLimit)
			}
		}
	}

	plans := make([]Plan, 0, len(order))
	for _, key := range order {
		plans = append(plans, newPlan(nodes[key].snap, stepsTo(nodes, key)))
	}
	cfg.logger.Info("shortest-path plans generated", "workflow", def.ID(), "nodes", len(order), "plans", len(plans))
	return plans, nil
}

func stepsTo(nodes map[string]*node, key string) []Step {
	var steps []Step
	for n := nodes[key]; n.via != nil; n = nodes[n.parent] {
		steps = append(steps, *n.via)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

func depth(nodes map[string]*node, key string) int {
	d := 0
	for n := nodes[key]; n.via != nil; n = nodes[n.parent] {
		d++
	}
	return d
}

// SimplePaths returns one Plan per route from the initial node that never
// revisits a node. The initial node gets a single empty plan.
func SimplePaths(def *domain.Definition, opts ...Option) ([]Plan, error) {
	cfg := newConfig(def, opts)
	engine := runtime.NewEngine(def, runtime.WithLogger(cfg.logger))

	start := engine.Initial().Snapshot
	plans := []Plan{newPlan(start, nil)}
	onPath := map[string]bool{start.Key(): true}
	discovered := map[string]bool{start.Key(): true}

	var walk func(current domain.Snapshot, steps []Step) error
	walk = func(current domain.Snapshot, steps []Step) error {
		for _, ev := range cfg.events {
			res, err := engine.Transition(current, ev)
			if err != nil {
				return err
			}
			if !res.Changed() {
				continue
			}
			key := res.Snapshot.Key()
			if onPath[key] || !cfg.keep(res.Snapshot) {
				continue
			}
			if !discovered[key] {
				discovered[key] = true
				cfg.logger.Debug("node discovered", "state", res.Snapshot.State, "depth", len(steps)+1)
				if cfg.nodeLimit > 0 && len(discovered) > cfg.nodeLimit {
					return fmt.Errorf("%w: more than %d nodes", ErrNodeLimit, cfg.nodeLimit)
				}
			}

			route := append(append([]Step(nil), steps...), Step{Event: ev, From: current, To: res.Snapshot})
			plans = append(plans, newPlan(res.Snapshot, route))

			onPath[key] = true
			if err := walk(res.Snapshot, route); err != nil {
				return err
			}
			delete(onPath, key)
		}
		return nil
	}

	if err := walk(start, nil); err != nil {
		return nil, err
	}
	cfg.logger.Info("simple-path plans generated", "workflow", def.ID(), "nodes", len(discovered), "plans", len(plans))
	return plans, nil
}
