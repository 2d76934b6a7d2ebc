/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atombpmn/flowrt/src/core/models"
)

const simpleProcess = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" id="defs1">
  <bpmn:process id="proc1" name="Simple" isExecutable="true">
    <bpmn:startEvent id="start1">
      <bpmn:outgoing>flow1</bpmn:outgoing>
    </bpmn:startEvent>
    <bpmn:task id="task1" name="Do work">
      <bpmn:incoming>flow1</bpmn:incoming>
      <bpmn:outgoing>flow2</bpmn:outgoing>
    </bpmn:task>
    <bpmn:endEvent id="end1">
      <bpmn:incoming>flow2</bpmn:incoming>
    </bpmn:endEvent>
    <bpmn:sequenceFlow id="flow1" sourceRef="start1" targetRef="task1"/>
    <bpmn:sequenceFlow id="flow2" sourceRef="task1" targetRef="end1"/>
  </bpmn:process>
</bpmn:definitions>`

func TestParseBytes_SimpleProcess(t *testing.T) {
	p := NewBPMNParser()
	g, err := p.ParseBytes([]byte(simpleProcess))
	require.NoError(t, err)
	assert.Equal(t, "proc1", g.ID)
	assert.True(t, g.IsExecutable)
	assert.Len(t, g.Nodes(), 3)
	assert.Len(t, g.Flows(), 2)

	start := g.Node("start1")
	require.NotNil(t, start)
	assert.Equal(t, NodeStartEvent, start.Type)
	assert.Equal(t, []string{"flow1"}, start.Outgoing)

	task := g.Node("task1")
	require.NotNil(t, task)
	assert.Equal(t, "Do work", task.Name)
}

func TestParseBytes_MissingEndEvent(t *testing.T) {
	bad := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="proc1" isExecutable="true">
    <bpmn:startEvent id="start1"/>
  </bpmn:process>
</bpmn:definitions>`

	_, err := NewBPMNParser().ParseBytes([]byte(bad))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrProcessGraphInvalid))
}

func TestParseBytes_Cycle(t *testing.T) {
	withCycle := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="proc1" isExecutable="true">
    <bpmn:startEvent id="start1"/>
    <bpmn:task id="task1"/>
    <bpmn:task id="task2"/>
    <bpmn:endEvent id="end1"/>
    <bpmn:sequenceFlow id="f1" sourceRef="start1" targetRef="task1"/>
    <bpmn:sequenceFlow id="f2" sourceRef="task1" targetRef="task2"/>
    <bpmn:sequenceFlow id="f3" sourceRef="task2" targetRef="task1"/>
    <bpmn:sequenceFlow id="f4" sourceRef="task2" targetRef="end1"/>
  </bpmn:process>
</bpmn:definitions>`

	_, err := NewBPMNParser().ParseBytes([]byte(withCycle))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrProcessGraphInvalid))
}

func TestParseBytes_SelfLoopAllowed(t *testing.T) {
	selfLoop := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="proc1" isExecutable="true">
    <bpmn:startEvent id="start1"/>
    <bpmn:task id="task1"/>
    <bpmn:endEvent id="end1"/>
    <bpmn:sequenceFlow id="f1" sourceRef="start1" targetRef="task1"/>
    <bpmn:sequenceFlow id="f2" sourceRef="task1" targetRef="task1"/>
    <bpmn:sequenceFlow id="f3" sourceRef="task1" targetRef="end1"/>
  </bpmn:process>
</bpmn:definitions>`

	_, err := NewBPMNParser().ParseBytes([]byte(selfLoop))
	require.NoError(t, err)
}

func TestParseBytes_DuplicateNodeID(t *testing.T) {
	dup := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="proc1" isExecutable="true">
    <bpmn:startEvent id="start1"/>
    <bpmn:task id="start1"/>
    <bpmn:endEvent id="end1"/>
    <bpmn:sequenceFlow id="f1" sourceRef="start1" targetRef="end1"/>
  </bpmn:process>
</bpmn:definitions>`

	_, err := NewBPMNParser().ParseBytes([]byte(dup))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrDuplicateID))
}

func TestParseBytes_BoundaryEventDefaults(t *testing.T) {
	withBoundary := `<?xml version="1.0"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <bpmn:process id="proc1" isExecutable="true">
    <bpmn:startEvent id="start1"/>
    <bpmn:task id="task1"/>
    <bpmn:boundaryEvent id="be1" attachedToRef="task1">
      <bpmn:timerEventDefinition>
        <bpmn:timeDuration>PT5M</bpmn:timeDuration>
      </bpmn:timerEventDefinition>
    </bpmn:boundaryEvent>
    <bpmn:endEvent id="end1"/>
    <bpmn:endEvent id="end2"/>
    <bpmn:sequenceFlow id="f1" sourceRef="start1" targetRef="task1"/>
    <bpmn:sequenceFlow id="f2" sourceRef="task1" targetRef="end1"/>
    <bpmn:sequenceFlow id="f3" sourceRef="be1" targetRef="end2"/>
  </bpmn:process>
</bpmn:definitions>`

	g, err := NewBPMNParser().ParseBytes([]byte(withBoundary))
	require.NoError(t, err)

	be := g.Node("be1")
	require.NotNil(t, be)
	assert.True(t, be.CancelActivity)
	require.Len(t, be.EventDefinitions, 1)
	assert.Equal(t, EventDefTimer, be.EventDefinitions[0].Type)
	require.NotNil(t, be.EventDefinitions[0].Timer)
	assert.Equal(t, "PT5M", be.EventDefinitions[0].Timer.Duration)

	boundaries := g.BoundaryEventsFor("task1")
	require.Len(t, boundaries, 1)
	assert.Equal(t, "be1", boundaries[0].ID)
}
