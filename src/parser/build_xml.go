/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package parser

import "strconv"

var eventDefinitionTags = map[string]EventDefinitionType{
	"timerEventDefinition":       EventDefTimer,
	"messageEventDefinition":     EventDefMessage,
	"signalEventDefinition":      EventDefSignal,
	"errorEventDefinition":       EventDefError,
	"escalationEventDefinition":  EventDefEscalation,
	"conditionalEventDefinition": EventDefConditional,
	"compensateEventDefinition":  EventDefCompensate,
	"cancelEventDefinition":      EventDefCancel,
	"terminateEventDefinition":   EventDefTerminate,
	"linkEventDefinition":        EventDefLink,
}

var eventNodeTypes = map[string]NodeType{
	"startEvent":             NodeStartEvent,
	"endEvent":               NodeEndEvent,
	"intermediateCatchEvent": NodeIntermediateCatchEvent,
	"intermediateThrowEvent": NodeIntermediateThrowEvent,
	"boundaryEvent":          NodeBoundaryEvent,
}

var taskNodeTypes = map[string]NodeType{
	"task":             NodeTask,
	"userTask":         NodeUserTask,
	"serviceTask":      NodeServiceTask,
	"scriptTask":       NodeScriptTask,
	"sendTask":         NodeSendTask,
	"receiveTask":      NodeReceiveTask,
	"manualTask":       NodeManualTask,
	"businessRuleTask": NodeBusinessRuleTask,
	"callActivity":     NodeCallActivity,
	"subProcess":       NodeSubProcess,
}

var gatewayNodeTypes = map[string]NodeType{
	"exclusiveGateway":  NodeExclusiveGateway,
	"parallelGateway":   NodeParallelGateway,
	"inclusiveGateway":  NodeInclusiveGateway,
	"complexGateway":    NodeComplexGateway,
	"eventBasedGateway": NodeEventBasedGateway,
}

// buildProcessGraph walks one bpmn:process XML element and returns its
// sealed, validated ProcessGraph.
func buildProcessGraph(process *XMLElement) (*ProcessGraph, error) {
	id, _ := process.Attr("id")
	name, _ := process.Attr("name")
	isExecutable := process.BoolAttr("isExecutable", false)

	gb := NewGraphBuilder(id, name, isExecutable)
	gb.graph.IsTransaction = false

	for _, child := range process.Children {
		local := child.XMLName.Local

		switch {
		case eventNodeTypes[local] != "":
			n, err := buildEventNode(child, eventNodeTypes[local])
			if err != nil {
				return nil, err
			}
			if err := gb.AddNode(n); err != nil {
				return nil, err
			}
		case taskNodeTypes[local] != "":
			n, err := buildTaskNode(child, taskNodeTypes[local])
			if err != nil {
				return nil, err
			}
			if err := gb.AddNode(n); err != nil {
				return nil, err
			}
		case gatewayNodeTypes[local] != "":
			n, err := buildGatewayNode(child, gatewayNodeTypes[local])
			if err != nil {
				return nil, err
			}
			if err := gb.AddNode(n); err != nil {
				return nil, err
			}
		case local == "sequenceFlow":
			f, err := buildSequenceFlow(child)
			if err != nil {
				return nil, err
			}
			if err := gb.AddFlow(f); err != nil {
				return nil, err
			}
		}
	}

	if isTx, _ := process.Attr("isClosed"); isTx == "true" {
		gb.graph.IsTransaction = true
	}

	markDefaultFlows(gb.graph)

	return gb.Seal()
}

func documentationOf(e *XMLElement) []string {
	var docs []string
	for _, c := range e.ChildrenNamed("documentation") {
		if c.Text != "" {
			docs = append(docs, c.Text)
		}
	}
	return docs
}

func extensionPropertiesOf(e *XMLElement) map[string]string {
	props := map[string]string{}
	ext := e.ChildNamed("extensionElements")
	if ext == nil {
		return props
	}
	for _, propsEl := range ext.ChildrenNamed("properties") {
		for _, p := range propsEl.ChildrenNamed("property") {
			if k, ok := p.Attr("name"); ok {
				if v, ok := p.Attr("value"); ok {
					props[k] = v
				}
			}
		}
	}
	if td := ext.ChildNamed("taskDefinition"); td != nil {
		if t, ok := td.Attr("type"); ok {
			props["taskDefinition.type"] = t
		}
	}
	return props
}

func taskDefinitionType(e *XMLElement) string {
	ext := e.ChildNamed("extensionElements")
	if ext == nil {
		return ""
	}
	if td := ext.ChildNamed("taskDefinition"); td != nil {
		if t, ok := td.Attr("type"); ok {
			return t
		}
	}
	return ""
}

func buildEventDefinitions(e *XMLElement) []EventDefinition {
	var defs []EventDefinition
	for _, child := range e.Children {
		kind, ok := eventDefinitionTags[child.XMLName.Local]
		if !ok {
			continue
		}
		def := EventDefinition{Type: kind}
		switch kind {
		case EventDefTimer:
			td := &TimerDefinition{}
			if d := child.ChildNamed("timeDuration"); d != nil {
				td.Duration = d.Text
			}
			if d := child.ChildNamed("timeDate"); d != nil {
				td.Date = d.Text
			}
			if d := child.ChildNamed("timeCycle"); d != nil {
				td.Cycle = d.Text
			}
			def.Timer = td
		case EventDefMessage:
			if ref, ok := child.Attr("messageRef"); ok {
				def.Ref = ref
			}
		case EventDefSignal:
			if ref, ok := child.Attr("signalRef"); ok {
				def.Ref = ref
			}
		case EventDefError:
			if ref, ok := child.Attr("errorRef"); ok {
				def.Ref = ref
			}
		case EventDefEscalation:
			if ref, ok := child.Attr("escalationRef"); ok {
				def.Ref = ref
			}
		case EventDefConditional:
			if c := child.ChildNamed("condition"); c != nil {
				def.Condition = c.Text
			}
		}
		defs = append(defs, def)
	}
	return defs
}

func buildEventNode(e *XMLElement, nodeType NodeType) (*Node, error) {
	id, _ := e.Attr("id")
	b := NewNodeBuilder(id, nodeType)
	if name, ok := e.Attr("name"); ok {
		b.Name(name)
	}
	b.Documentation(documentationOf(e))
	b.EventDefinitions(buildEventDefinitions(e))

	if nodeType == NodeBoundaryEvent {
		if ref, ok := e.Attr("attachedToRef"); ok {
			b.AttachedToRef(ref)
		}
		cancel := true // interrupting by default per the BPMN spec
		if v, ok := e.Attr("cancelActivity"); ok {
			if parsed, err := strconv.ParseBool(v); err == nil {
				cancel = parsed
			}
		}
		b.CancelActivity(cancel)
	}
	if v, ok := e.Attr("parallelMultiple"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			b.ParallelMultiple(parsed)
		}
	}
	if v, ok := e.Attr("isInterrupting"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			b.IsInterrupting(parsed)
		}
	} else {
		b.IsInterrupting(true)
	}
	for k, v := range extensionPropertiesOf(e) {
		b.SetExtensionProperty(k, v)
	}
	return b.Build()
}

func buildTaskNode(e *XMLElement, nodeType NodeType) (*Node, error) {
	id, _ := e.Attr("id")
	b := NewNodeBuilder(id, nodeType)
	if name, ok := e.Attr("name"); ok {
		b.Name(name)
	}
	b.Documentation(documentationOf(e))
	if v, ok := e.Attr("isForCompensation"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			b.IsForCompensation(parsed)
		}
	}

	switch nodeType {
	case NodeScriptTask:
		if f, ok := e.Attr("scriptFormat"); ok {
			b.ScriptFormat(f)
		}
		if s := e.ChildNamed("script"); s != nil {
			b.Script(s.Text)
		}
	case NodeServiceTask, NodeSendTask, NodeReceiveTask, NodeBusinessRuleTask:
		b.TaskType(taskDefinitionType(e))
		if v, ok := e.Attr("instantiate"); ok {
			if parsed, err := strconv.ParseBool(v); err == nil {
				b.Instantiate(parsed)
			}
		}
	case NodeCallActivity:
		if ce, ok := e.Attr("calledElement"); ok {
			b.CalledElement(ce)
		}
	case NodeSubProcess:
		if v, ok := e.Attr("triggeredByEvent"); ok {
			if parsed, err := strconv.ParseBool(v); err == nil {
				b.TriggeredByEvent(parsed)
			}
		}
	}

	for k, v := range extensionPropertiesOf(e) {
		b.SetExtensionProperty(k, v)
	}
	return b.Build()
}

func buildGatewayNode(e *XMLElement, nodeType NodeType) (*Node, error) {
	id, _ := e.Attr("id")
	b := NewNodeBuilder(id, nodeType)
	if name, ok := e.Attr("name"); ok {
		b.Name(name)
	}
	b.Documentation(documentationOf(e))
	if dir, ok := e.Attr("gatewayDirection"); ok {
		b.GatewayDirection(dir)
	}
	if v, ok := e.Attr("instantiate"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			b.Instantiate(parsed)
		}
	}
	// default flow ref is resolved into DefaultFlow by markDefaultFlows
	// once every sequenceFlow has been added; stash the raw ref via the
	// extension property map until then.
	if d, ok := e.Attr("default"); ok {
		b.SetExtensionProperty("default", d)
	}
	return b.Build()
}

func buildSequenceFlow(e *XMLElement) (*Flow, error) {
	id, _ := e.Attr("id")
	source, _ := e.Attr("sourceRef")
	target, _ := e.Attr("targetRef")
	fb := NewFlowBuilder(id, source, target)
	if name, ok := e.Attr("name"); ok {
		fb.Name(name)
	}
	if cond := e.ChildNamed("conditionExpression"); cond != nil {
		fb.Condition(cond.Text)
	}
	return fb.Build()
}

// markDefaultFlows resolves each gateway's `default` attribute (stashed as
// an extension property during buildGatewayNode, since the referenced flow
// may not exist yet while the gateway node is being built) against the
// now-complete flow set.
func markDefaultFlows(g *ProcessGraph) {
	for _, n := range g.nodes {
		if ref, ok := n.ExtensionProperties["default"]; ok && ref != "" {
			if f := g.flows[ref]; f != nil {
				f.IsDefault = true
				n.DefaultFlow = ref
			}
		}
	}
}
