/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package parser

// NodeType is the closed set of flow node kinds a ProcessGraph can contain.
type NodeType string

const (
	NodeStartEvent              NodeType = "startEvent"
	NodeEndEvent                NodeType = "endEvent"
	NodeIntermediateCatchEvent  NodeType = "intermediateCatchEvent"
	NodeIntermediateThrowEvent  NodeType = "intermediateThrowEvent"
	NodeBoundaryEvent           NodeType = "boundaryEvent"
	NodeTask                    NodeType = "task"
	NodeUserTask                NodeType = "userTask"
	NodeServiceTask             NodeType = "serviceTask"
	NodeScriptTask              NodeType = "scriptTask"
	NodeSendTask                NodeType = "sendTask"
	NodeReceiveTask             NodeType = "receiveTask"
	NodeManualTask              NodeType = "manualTask"
	NodeBusinessRuleTask        NodeType = "businessRuleTask"
	NodeCallActivity            NodeType = "callActivity"
	NodeSubProcess              NodeType = "subProcess"
	NodeExclusiveGateway        NodeType = "exclusiveGateway"
	NodeParallelGateway         NodeType = "parallelGateway"
	NodeInclusiveGateway        NodeType = "inclusiveGateway"
	NodeComplexGateway          NodeType = "complexGateway"
	NodeEventBasedGateway       NodeType = "eventBasedGateway"
)

// IsEvent reports whether the node type is one of the event kinds.
func (t NodeType) IsEvent() bool {
	switch t {
	case NodeStartEvent, NodeEndEvent, NodeIntermediateCatchEvent, NodeIntermediateThrowEvent, NodeBoundaryEvent:
		return true
	}
	return false
}

// IsGateway reports whether the node type is one of the gateway kinds.
func (t NodeType) IsGateway() bool {
	switch t {
	case NodeExclusiveGateway, NodeParallelGateway, NodeInclusiveGateway, NodeComplexGateway, NodeEventBasedGateway:
		return true
	}
	return false
}

// IsActivity reports whether the node type is a task, call activity or
// subprocess.
func (t NodeType) IsActivity() bool {
	switch t {
	case NodeTask, NodeUserTask, NodeServiceTask, NodeScriptTask, NodeSendTask,
		NodeReceiveTask, NodeManualTask, NodeBusinessRuleTask, NodeCallActivity, NodeSubProcess:
		return true
	}
	return false
}

// EventDefinitionType enumerates the BPMN event definitions a catch/throw
// event or boundary event can carry.
type EventDefinitionType string

const (
	EventDefTimer       EventDefinitionType = "timer"
	EventDefMessage     EventDefinitionType = "message"
	EventDefSignal      EventDefinitionType = "signal"
	EventDefError       EventDefinitionType = "error"
	EventDefEscalation  EventDefinitionType = "escalation"
	EventDefConditional EventDefinitionType = "conditional"
	EventDefCompensate  EventDefinitionType = "compensate"
	EventDefCancel      EventDefinitionType = "cancel"
	EventDefTerminate   EventDefinitionType = "terminate"
	EventDefLink        EventDefinitionType = "link"
)

// TimerDefinition holds the raw ISO-8601 expressions of a timer event
// definition, before src/timewheel resolves them to a concrete schedule.
type TimerDefinition struct {
	Date     string
	Duration string
	Cycle    string
}

// EventDefinition is one event definition attached to an event node. A
// node can carry more than one only for event-based gateways' attached
// catch events; ordinary events carry exactly one.
type EventDefinition struct {
	Type      EventDefinitionType
	Ref       string // messageRef / signalRef / errorRef / escalationRef
	Timer     *TimerDefinition
	Condition string // FEEL/expression text for a conditional event definition
}

// Node is an immutable flow node sealed by NodeBuilder.Build. Every field
// is populated at build time; nothing outside this package mutates a Node
// once it is attached to a ProcessGraph.
type Node struct {
	ID   string
	Name string
	Type NodeType

	Incoming []string
	Outgoing []string

	Documentation []string

	// Events
	EventDefinitions []EventDefinition
	AttachedToRef    string // boundary events only
	CancelActivity   bool   // boundary events: interrupting vs non-interrupting
	ParallelMultiple bool
	IsInterrupting   bool // start events inside event subprocesses

	// Gateways
	GatewayDirection string
	DefaultFlow      string
	Instantiate      bool

	// Tasks
	ScriptFormat      string
	Script            string
	TaskType          string // Zeebe-style task type from a taskDefinition extension
	IsForCompensation bool

	// Call activity / subprocess
	CalledElement    string
	TriggeredByEvent bool
	IsTransaction    bool

	ExtensionProperties map[string]string
}

// Flow is an immutable sequence flow sealed by FlowBuilder.Build.
type Flow struct {
	ID                   string
	Name                 string
	SourceRef            string
	TargetRef            string
	ConditionExpression  string
	HasCondition         bool
	IsDefault            bool
}

// ProcessGraph is the fully resolved, validated representation of one
// bpmn:process element: a typed node/flow graph plus the process-level
// attributes a ProcessInstance needs at start time.
type ProcessGraph struct {
	ID            string
	Name          string
	IsExecutable  bool
	IsTransaction bool

	nodes     map[string]*Node
	flows     map[string]*Flow
	nodeOrder []string
	flowOrder []string
}

// Node returns the node with the given ID, or nil if absent.
func (g *ProcessGraph) Node(id string) *Node { return g.nodes[id] }

// Flow returns the flow with the given ID, or nil if absent.
func (g *ProcessGraph) Flow(id string) *Flow { return g.flows[id] }

// Nodes returns all nodes in build order.
func (g *ProcessGraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Flows returns all flows in build order.
func (g *ProcessGraph) Flows() []*Flow {
	out := make([]*Flow, 0, len(g.flowOrder))
	for _, id := range g.flowOrder {
		out = append(out, g.flows[id])
	}
	return out
}

// OutgoingFlows returns the flows leaving the given node ID.
func (g *ProcessGraph) OutgoingFlows(nodeID string) []*Flow {
	n := g.nodes[nodeID]
	if n == nil {
		return nil
	}
	out := make([]*Flow, 0, len(n.Outgoing))
	for _, fid := range n.Outgoing {
		if f := g.flows[fid]; f != nil {
			out = append(out, f)
		}
	}
	return out
}

// IncomingFlows returns the flows entering the given node ID.
func (g *ProcessGraph) IncomingFlows(nodeID string) []*Flow {
	n := g.nodes[nodeID]
	if n == nil {
		return nil
	}
	out := make([]*Flow, 0, len(n.Incoming))
	for _, fid := range n.Incoming {
		if f := g.flows[fid]; f != nil {
			out = append(out, f)
		}
	}
	return out
}

// StartEvents returns every top-level start event node.
func (g *ProcessGraph) StartEvents() []*Node {
	var out []*Node
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Type == NodeStartEvent {
			out = append(out, n)
		}
	}
	return out
}

// BoundaryEventsFor returns the boundary events attached to the given
// activity node ID.
func (g *ProcessGraph) BoundaryEventsFor(activityID string) []*Node {
	var out []*Node
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if n.Type == NodeBoundaryEvent && n.AttachedToRef == activityID {
			out = append(out, n)
		}
	}
	return out
}
