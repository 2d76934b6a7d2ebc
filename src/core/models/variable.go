/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import (
	"fmt"
	"time"
)

// VariableType is the declared type of a process Variable. Variables are
// stored as a tagged union rather than a bare interface{} so the
// relational history table and the expression engine agree on how a
// value round-trips through JSON.
type VariableType string

const (
	VariableTypeString  VariableType = "string"
	VariableTypeInteger VariableType = "integer"
	VariableTypeFloat   VariableType = "float"
	VariableTypeBoolean VariableType = "boolean"
	VariableTypeDate    VariableType = "date"
	VariableTypeJSON    VariableType = "json"
)

// Variable is a named, typed value scoped to a process instance or one of
// its subprocess scopes.
type Variable struct {
	Name      string       `json:"name"`
	Type      VariableType `json:"type"`
	Value     interface{}  `json:"value"`
	ScopeID   string       `json:"scope_id,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewVariable infers a VariableType from value's Go type and wraps it.
func NewVariable(name string, value interface{}, scopeID string) (Variable, error) {
	vt, err := InferVariableType(value)
	if err != nil {
		return Variable{}, err
	}
	return Variable{Name: name, Type: vt, Value: value, ScopeID: scopeID, UpdatedAt: time.Now()}, nil
}

// InferVariableType maps a Go runtime value to the closest VariableType.
func InferVariableType(value interface{}) (VariableType, error) {
	switch value.(type) {
	case nil:
		return VariableTypeJSON, nil
	case string:
		return VariableTypeString, nil
	case bool:
		return VariableTypeBoolean, nil
	case int, int32, int64:
		return VariableTypeInteger, nil
	case float32, float64:
		return VariableTypeFloat, nil
	case time.Time:
		return VariableTypeDate, nil
	case map[string]interface{}, []interface{}:
		return VariableTypeJSON, nil
	default:
		return "", fmt.Errorf("unsupported variable value type %T", value)
	}
}
