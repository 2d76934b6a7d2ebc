/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package parser

import "github.com/atombpmn/flowrt/src/core/models"

// ProcessValidator checks a ProcessGraph's structure, connectivity and
// presence of start/end events before it is handed to the executor.
type ProcessValidator struct{}

// Validate runs every structural check and returns the first failure as
// an *models.EngineError with kind PROCESS_GRAPH_INVALID.
func (v *ProcessValidator) Validate(g *ProcessGraph) error {
	if err := v.validateStructure(g); err != nil {
		return err
	}
	if err := v.validateConnectivity(g); err != nil {
		return err
	}
	return v.validateEventNodes(g)
}

func (v *ProcessValidator) validateStructure(g *ProcessGraph) error {
	for _, f := range g.flows {
		if _, ok := g.nodes[f.SourceRef]; !ok {
			return models.NewEngineError(models.ErrProcessGraphInvalid, "", f.ID,
				"invalid node reference in flow: "+f.SourceRef, nil)
		}
		if _, ok := g.nodes[f.TargetRef]; !ok {
			return models.NewEngineError(models.ErrProcessGraphInvalid, "", f.ID,
				"invalid node reference in flow: "+f.TargetRef, nil)
		}
	}
	return nil
}

func (v *ProcessValidator) validateEventNodes(g *ProcessGraph) error {
	hasStart, hasEnd := false, false
	for _, n := range g.nodes {
		if n.Type == NodeStartEvent {
			hasStart = true
		}
		if n.Type == NodeEndEvent {
			hasEnd = true
		}
	}
	if !hasStart {
		return models.NewEngineError(models.ErrProcessGraphInvalid, "", "", "no start event found in process graph", nil)
	}
	if !hasEnd {
		return models.NewEngineError(models.ErrProcessGraphInvalid, "", "", "no end event found in process graph", nil)
	}
	return nil
}

// validateConnectivity builds a flow adjacency map, separating self-loops
// out of cycle detection, DFS's from every start event (a boundary event
// counts as reachable from the activity it is attached to) and rejects
// both genuine cycles and nodes unreachable from any start event.
func (v *ProcessValidator) validateConnectivity(g *ProcessGraph) error {
	flowsBySource := map[string][]string{}
	selfLoops := map[string]bool{}

	for _, f := range g.flows {
		if f.SourceRef == f.TargetRef {
			selfLoops[f.SourceRef] = true
			continue
		}
		flowsBySource[f.SourceRef] = append(flowsBySource[f.SourceRef], f.TargetRef)
	}
	// A boundary event has no incoming flow; it is reached through the
	// activity it is attached to.
	for _, n := range g.nodes {
		if n.Type == NodeBoundaryEvent && n.AttachedToRef != "" {
			flowsBySource[n.AttachedToRef] = append(flowsBySource[n.AttachedToRef], n.ID)
		}
	}

	visited := map[string]bool{}
	path := map[string]bool{}
	connected := map[string]bool{}
	var cycleAt string

	var dfs func(id string) bool // true on success, false if a cycle was found
	dfs = func(id string) bool {
		if path[id] && !selfLoops[id] {
			cycleAt = id
			return false
		}
		if visited[id] {
			return true
		}
		visited[id] = true
		path[id] = true
		connected[id] = true

		for _, next := range flowsBySource[id] {
			if !dfs(next) {
				return false
			}
		}
		path[id] = false
		return true
	}

	for _, n := range g.nodes {
		if n.Type == NodeStartEvent {
			if !dfs(n.ID) {
				return models.NewEngineError(models.ErrProcessGraphInvalid, "", cycleAt, "cycle detected in process graph", nil)
			}
		}
	}

	var disconnected []string
	for id := range g.nodes {
		if !connected[id] {
			disconnected = append(disconnected, id)
		}
	}
	if len(disconnected) > 0 {
		msg := "disconnected nodes detected"
		return models.NewEngineError(models.ErrProcessGraphInvalid, "", disconnected[0], msg, nil)
	}
	return nil
}
