/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package parser turns a BPMN 2.0 XML document into one or more sealed,
// validated ProcessGraph values. Parsing happens in two passes: the XML
// tree is walked once to collect node and flow fragments via NodeBuilder
// and FlowBuilder, then GraphBuilder.Seal runs ProcessValidator before
// handing back an immutable graph no other package can mutate.
package parser

import (
	"os"

	"github.com/atombpmn/flowrt/src/core/models"
)

// BPMNParser parses BPMN 2.0 XML documents into ProcessGraph values.
type BPMNParser struct{}

// NewBPMNParser creates a parser. It holds no state between calls.
func NewBPMNParser() *BPMNParser {
	return &BPMNParser{}
}

// ParseFile reads and parses a .bpmn file, returning the first executable
// process it finds.
func (p *BPMNParser) ParseFile(path string) (*ProcessGraph, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewEngineError(models.ErrInvalidBPMN, "", "", "failed to read BPMN file", err)
	}
	return p.ParseBytes(content)
}

// ParseBytes parses raw BPMN XML content, returning the first executable
// process it finds. Use ParseAllBytes to retrieve every process in a
// multi-process diagram.
func (p *BPMNParser) ParseBytes(content []byte) (*ProcessGraph, error) {
	graphs, err := p.ParseAllBytes(content)
	if err != nil {
		return nil, err
	}
	for _, g := range graphs {
		if g.IsExecutable {
			return g, nil
		}
	}
	return graphs[0], nil
}

// ParseAllBytes parses every bpmn:process element in the document.
func (p *BPMNParser) ParseAllBytes(content []byte) ([]*ProcessGraph, error) {
	root, err := decodeXML(content)
	if err != nil {
		return nil, models.NewEngineError(models.ErrInvalidBPMN, "", "", "malformed BPMN XML", err)
	}
	if root.XMLName.Local != "definitions" {
		return nil, models.NewEngineError(models.ErrInvalidBPMN, "", "", "root element is not bpmn:definitions", nil)
	}

	processElements := root.ChildrenNamed("process")
	if len(processElements) == 0 {
		return nil, models.NewEngineError(models.ErrInvalidBPMN, "", "", "no process element found in definitions", nil)
	}

	graphs := make([]*ProcessGraph, 0, len(processElements))
	for _, pe := range processElements {
		g, err := buildProcessGraph(pe)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}
