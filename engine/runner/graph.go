package runner

import (
	"fmt"
	"sort"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
)

// Graph is the execution DAG of actions reachable from a requested action
// through dependency edges. Edges point from an action to the sources whose
// results it consumes; the topological order lists sources before
// dependents.
type Graph struct {
	target core.ID
	nodes  map[core.ID]*action.Config
	order  []core.ID
}

// Target returns the requested action id.
func (g *Graph) Target() core.ID {
	return g.target
}

// Order returns action ids in execution order (dependencies first).
func (g *Graph) Order() []core.ID {
	return g.order
}

// Node returns the configuration snapshot for an action in the graph.
func (g *Graph) Node(id core.ID) *action.Config {
	return g.nodes[id]
}

// Len returns the number of actions in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// frame is one level of the iterative depth-first traversal.
type frame struct {
	id   core.ID
	next int
}

// dfs coloring states
type visitState int

const (
	stateWhite visitState = iota // unvisited
	stateGray                    // on the current path
	stateBlack                   // fully explored
)

// BuildGraph resolves the execution graph for target over a consistent
// snapshot of the application's actions. It rejects cycles (a gray node
// revisited during traversal) and dangling dependency sources. The
// traversal is an iterative depth-first walk so malformed data can never
// overflow the stack.
func BuildGraph(target core.ID, snapshot []action.Config) (*Graph, error) {
	byID := make(map[core.ID]*action.Config, len(snapshot))
	for i := range snapshot {
		byID[snapshot[i].ID] = &snapshot[i]
	}
	root, ok := byID[target]
	if !ok {
		return nil, core.NewError(nil, core.ErrCodeValidation,
			fmt.Sprintf("unknown action %s", target),
			map[string]any{"action_id": target.String()})
	}

	state := make(map[core.ID]visitState, len(snapshot))
	graph := &Graph{
		target: target,
		nodes:  make(map[core.ID]*action.Config, len(snapshot)),
		order:  make([]core.ID, 0, len(snapshot)),
	}

	stack := []frame{{id: root.ID}}
	state[root.ID] = stateGray
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		cfg := byID[top.id]
		if top.next < len(cfg.Dependencies) {
			dep := cfg.Dependencies[top.next]
			top.next++
			src, ok := byID[dep.Source]
			if !ok {
				return nil, core.NewError(nil, core.ErrCodeValidation,
					fmt.Sprintf("action %s depends on unknown action %s", cfg.ID, dep.Source),
					map[string]any{"action_id": cfg.ID.String(), "source": dep.Source.String()})
			}
			switch state[src.ID] {
			case stateGray:
				return nil, newCycleError(stack, src.ID)
			case stateWhite:
				state[src.ID] = stateGray
				stack = append(stack, frame{id: src.ID})
			}
			continue
		}
		state[top.id] = stateBlack
		graph.nodes[top.id] = cfg
		graph.order = append(graph.order, top.id)
		stack = stack[:len(stack)-1]
	}
	return graph, nil
}

// newCycleError names every action on the path segment that closes the
// cycle so callers can fix the configuration.
func newCycleError(stack []frame, repeated core.ID) error {
	members := make([]string, 0, len(stack))
	collecting := false
	for i := range stack {
		if stack[i].id == repeated {
			collecting = true
		}
		if collecting {
			members = append(members, stack[i].id.String())
		}
	}
	if len(members) == 0 {
		members = []string{repeated.String()}
	}
	sort.Strings(members)
	return core.NewError(nil, core.ErrCodeCycle,
		fmt.Sprintf("dependency cycle between actions: %v", members),
		map[string]any{"actions": members})
}

// WouldCreateCycle checks, at dependency write time, whether replacing the
// edited action's dependencies with deps closes a cycle over the current
// graph. It also rejects edges to missing sources.
func WouldCreateCycle(snapshot []action.Config, actionID core.ID, deps []action.Dependency) error {
	patched := make([]action.Config, len(snapshot))
	copy(patched, snapshot)
	if edited, err := action.FindConfig(patched, actionID); err == nil {
		edited.Dependencies = deps
	} else {
		patched = append(patched, action.Config{ID: actionID, Dependencies: deps})
	}
	for _, d := range deps {
		if d.Source == actionID {
			return core.NewError(nil, core.ErrCodeCycle,
				fmt.Sprintf("action %s cannot depend on itself", actionID),
				map[string]any{"actions": []string{actionID.String()}})
		}
	}
	_, err := BuildGraph(actionID, patched)
	return err
}
