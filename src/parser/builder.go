/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package parser

import "github.com/atombpmn/flowrt/src/core/models"

// NodeBuilder collects the incoming/outgoing flow fragments and attributes
// for one flow node as the XML tree is walked, then seals it into an
// immutable Node.
type NodeBuilder struct {
	node *Node
}

// NewNodeBuilder starts a builder for a node of the given type.
func NewNodeBuilder(id string, t NodeType) *NodeBuilder {
	return &NodeBuilder{node: &Node{
		ID:                  id,
		Type:                t,
		ExtensionProperties: map[string]string{},
	}}
}

func (b *NodeBuilder) Name(v string) *NodeBuilder                { b.node.Name = v; return b }
func (b *NodeBuilder) Documentation(v []string) *NodeBuilder     { b.node.Documentation = v; return b }
func (b *NodeBuilder) AddIncoming(id string) *NodeBuilder        { b.node.Incoming = append(b.node.Incoming, id); return b }
func (b *NodeBuilder) AddOutgoing(id string) *NodeBuilder        { b.node.Outgoing = append(b.node.Outgoing, id); return b }
func (b *NodeBuilder) EventDefinitions(d []EventDefinition) *NodeBuilder {
	b.node.EventDefinitions = d
	return b
}
func (b *NodeBuilder) AttachedToRef(v string) *NodeBuilder    { b.node.AttachedToRef = v; return b }
func (b *NodeBuilder) CancelActivity(v bool) *NodeBuilder     { b.node.CancelActivity = v; return b }
func (b *NodeBuilder) ParallelMultiple(v bool) *NodeBuilder   { b.node.ParallelMultiple = v; return b }
func (b *NodeBuilder) IsInterrupting(v bool) *NodeBuilder     { b.node.IsInterrupting = v; return b }
func (b *NodeBuilder) GatewayDirection(v string) *NodeBuilder { b.node.GatewayDirection = v; return b }
func (b *NodeBuilder) DefaultFlow(v string) *NodeBuilder      { b.node.DefaultFlow = v; return b }
func (b *NodeBuilder) Instantiate(v bool) *NodeBuilder        { b.node.Instantiate = v; return b }
func (b *NodeBuilder) ScriptFormat(v string) *NodeBuilder     { b.node.ScriptFormat = v; return b }
func (b *NodeBuilder) Script(v string) *NodeBuilder           { b.node.Script = v; return b }
func (b *NodeBuilder) TaskType(v string) *NodeBuilder         { b.node.TaskType = v; return b }
func (b *NodeBuilder) IsForCompensation(v bool) *NodeBuilder  { b.node.IsForCompensation = v; return b }
func (b *NodeBuilder) CalledElement(v string) *NodeBuilder    { b.node.CalledElement = v; return b }
func (b *NodeBuilder) TriggeredByEvent(v bool) *NodeBuilder   { b.node.TriggeredByEvent = v; return b }
func (b *NodeBuilder) IsTransaction(v bool) *NodeBuilder      { b.node.IsTransaction = v; return b }
func (b *NodeBuilder) SetExtensionProperty(k, v string) *NodeBuilder {
	b.node.ExtensionProperties[k] = v
	return b
}

// Build seals the node. It is the only way to obtain a *Node.
func (b *NodeBuilder) Build() (*Node, error) {
	if b.node.ID == "" {
		return nil, models.NewEngineError(models.ErrInvalidBPMN, "", "", "node is missing an id", nil)
	}
	return b.node, nil
}

// FlowBuilder collects a sequence flow's fields before sealing it.
type FlowBuilder struct {
	flow *Flow
}

// NewFlowBuilder starts a builder for a sequence flow.
func NewFlowBuilder(id, sourceRef, targetRef string) *FlowBuilder {
	return &FlowBuilder{flow: &Flow{ID: id, SourceRef: sourceRef, TargetRef: targetRef}}
}

func (b *FlowBuilder) Name(v string) *FlowBuilder { b.flow.Name = v; return b }
func (b *FlowBuilder) Condition(expr string) *FlowBuilder {
	b.flow.ConditionExpression = expr
	b.flow.HasCondition = expr != ""
	return b
}
func (b *FlowBuilder) Default(v bool) *FlowBuilder { b.flow.IsDefault = v; return b }

// Build seals the flow.
func (b *FlowBuilder) Build() (*Flow, error) {
	if b.flow.ID == "" || b.flow.SourceRef == "" || b.flow.TargetRef == "" {
		return nil, models.NewEngineError(models.ErrInvalidBPMN, "", b.flow.ID, "sequence flow missing id, sourceRef or targetRef", nil)
	}
	return b.flow, nil
}

// GraphBuilder assembles a ProcessGraph from sealed nodes and flows,
// wiring each flow's ID into its source/target node's Outgoing/Incoming
// lists and marking the declared default flow on its gateway, then runs
// ProcessValidator before handing back an immutable graph.
type GraphBuilder struct {
	graph *ProcessGraph
}

// NewGraphBuilder starts a builder for the process with the given id.
func NewGraphBuilder(id, name string, isExecutable bool) *GraphBuilder {
	return &GraphBuilder{graph: &ProcessGraph{
		ID:           id,
		Name:         name,
		IsExecutable: isExecutable,
		nodes:        map[string]*Node{},
		flows:        map[string]*Flow{},
	}}
}

// AddNode registers a sealed node. Duplicate IDs are rejected.
func (b *GraphBuilder) AddNode(n *Node) error {
	if _, exists := b.graph.nodes[n.ID]; exists {
		return models.NewEngineError(models.ErrDuplicateID, "", n.ID, "duplicate node id in process graph", nil)
	}
	b.graph.nodes[n.ID] = n
	b.graph.nodeOrder = append(b.graph.nodeOrder, n.ID)
	return nil
}

// AddFlow registers a sealed flow and wires it into its endpoints.
func (b *GraphBuilder) AddFlow(f *Flow) error {
	if _, exists := b.graph.flows[f.ID]; exists {
		return models.NewEngineError(models.ErrDuplicateID, "", f.ID, "duplicate flow id in process graph", nil)
	}
	b.graph.flows[f.ID] = f
	b.graph.flowOrder = append(b.graph.flowOrder, f.ID)

	if src := b.graph.nodes[f.SourceRef]; src != nil {
		src.Outgoing = appendUnique(src.Outgoing, f.ID)
		if f.IsDefault {
			src.DefaultFlow = f.ID
		}
	}
	if tgt := b.graph.nodes[f.TargetRef]; tgt != nil {
		tgt.Incoming = appendUnique(tgt.Incoming, f.ID)
	}
	return nil
}

func appendUnique(ss []string, v string) []string {
	for _, s := range ss {
		if s == v {
			return ss
		}
	}
	return append(ss, v)
}

// Seal validates the accumulated graph and returns it, or the first
// validation error encountered.
func (b *GraphBuilder) Seal() (*ProcessGraph, error) {
	if err := (&ProcessValidator{}).Validate(b.graph); err != nil {
		return nil, err
	}
	return b.graph, nil
}
