/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import "time"

// Scope is a variable namespace nested inside a process instance: the
// root scope (ScopeID == "") plus one nested scope per active subprocess
// or transaction. Scopes form a tree via ParentScopeID so that variable
// lookups can walk outward when a key is missing locally.
type Scope struct {
	ScopeID       string    `json:"scope_id"`
	ProcessInstanceID string `json:"process_instance_id"`
	ParentScopeID string    `json:"parent_scope_id,omitempty"`
	ElementID     string    `json:"element_id"`
	IsTransaction bool      `json:"is_transaction"`
	CreatedAt     time.Time `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// NewScope creates a nested scope entered for elementID (a subprocess or
// transaction activity).
func NewScope(processInstanceID, parentScopeID, elementID string, isTransaction bool) *Scope {
	return &Scope{
		ScopeID:           GenerateID(),
		ProcessInstanceID: processInstanceID,
		ParentScopeID:     parentScopeID,
		ElementID:         elementID,
		IsTransaction:     isTransaction,
		CreatedAt:         time.Now(),
	}
}

// Close marks the scope as exited. Closed scopes are retained until their
// tokens and compensation handlers are cleared, then reaped.
func (s *Scope) Close() {
	now := time.Now()
	s.ClosedAt = &now
}

// IsClosed reports whether the scope has been exited.
func (s *Scope) IsClosed() bool { return s.ClosedAt != nil }
