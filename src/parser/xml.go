/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package parser

import "encoding/xml"

// XMLElement is a generic XML element representation used while walking a
// BPMN document before it is resolved into a typed Node/Flow graph.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr    `xml:",any,attr"`
	Content    []byte        `xml:",innerxml"`
	Children   []*XMLElement `xml:",any"`
	Text       string        `xml:",chardata"`
}

// Attr returns the value of the named attribute (namespace-less lookup) and
// whether it was present.
func (e *XMLElement) Attr(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// BoolAttr returns the named attribute parsed as a bool, falling back to
// defaultValue when absent; a present value other than "true" or "1"
// reads as false.
func (e *XMLElement) BoolAttr(name string, defaultValue bool) bool {
	v, ok := e.Attr(name)
	if !ok {
		return defaultValue
	}
	return v == "true" || v == "1"
}

// ChildrenNamed returns the direct children whose local name matches.
func (e *XMLElement) ChildrenNamed(name string) []*XMLElement {
	var out []*XMLElement
	for _, c := range e.Children {
		if c.XMLName.Local == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildNamed returns the first direct child whose local name matches.
func (e *XMLElement) ChildNamed(name string) *XMLElement {
	for _, c := range e.Children {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

func decodeXML(content []byte) (*XMLElement, error) {
	var root XMLElement
	if err := xml.Unmarshal(content, &root); err != nil {
		return nil, err
	}
	return &root, nil
}
