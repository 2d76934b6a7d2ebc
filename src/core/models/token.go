/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import (
	"encoding/json"
	"time"
)

// TokenState is the lifecycle state of a token.
type TokenState string

const (
	TokenStateActive       TokenState = "ACTIVE"
	TokenStateSuspended    TokenState = "SUSPENDED"
	TokenStateCompleted    TokenState = "COMPLETED"
	TokenStateError        TokenState = "ERROR"
	TokenStateCancelled    TokenState = "CANCELLED"
	TokenStateCompensation TokenState = "COMPENSATION"
	TokenStateWaiting      TokenState = "WAITING"
)

// TokenType distinguishes the kind of flow a token represents.
type TokenType string

const (
	TokenTypeExecution TokenType = "EXECUTION"
	TokenTypeEvent     TokenType = "EVENT"
	TokenTypeTimer     TokenType = "TIMER"
)

// ContextKeyTimerCallback marks a token's execution context as resumed
// from a fired timer rather than a normal advance.
const ContextKeyTimerCallback = "timer_callback"

// Token is a single point of control flow inside a process instance. A
// token's CurrentElementID plus its ScopeID identify where it is in the
// process graph; Variables holds the scope-local variables it carries.
//
// Version is the token's CAS fencing token: every state-mutating write
// through the state manager must supply the Version it last observed,
// and the store rejects the write (TOKEN_STATE) if the stored version has
// moved on. Callers never bump Version themselves; the state manager does.
type Token struct {
	TokenID           string                 `json:"token_id"`
	ProcessInstanceID string                 `json:"process_instance_id"`
	ProcessKey        string                 `json:"process_key"`
	CurrentElementID  string                 `json:"current_element_id"`
	PreviousElementID string                 `json:"previous_element_id,omitempty"`
	ScopeID           string                 `json:"scope_id,omitempty"`
	State             TokenState             `json:"state"`
	Type              TokenType              `json:"type"`
	Variables         map[string]interface{} `json:"variables"`
	WaitingFor        string                 `json:"waiting_for,omitempty"`
	Version           uint64                 `json:"version"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	CompletedAt       *time.Time             `json:"completed_at,omitempty"`
	ExecutionContext  map[string]interface{} `json:"execution_context,omitempty"`
	ParentTokenID     string                 `json:"parent_token_id,omitempty"`
	ChildTokenIDs     []string               `json:"child_token_ids,omitempty"`
	BoundaryTimerIDs  []string               `json:"boundary_timer_ids,omitempty"`
}

// NewToken creates a new execution token positioned at elementID.
func NewToken(processInstanceID, processKey, elementID, scopeID string) *Token {
	now := time.Now()
	return &Token{
		TokenID:           GenerateID(),
		ProcessInstanceID: processInstanceID,
		ProcessKey:        processKey,
		CurrentElementID:  elementID,
		ScopeID:           scopeID,
		State:             TokenStateActive,
		Type:              TokenTypeExecution,
		Variables:         make(map[string]interface{}),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NewEventToken creates a token representing an event-subprocess or
// event-driven flow of control.
func NewEventToken(processInstanceID, processKey, elementID, scopeID string) *Token {
	t := NewToken(processInstanceID, processKey, elementID, scopeID)
	t.Type = TokenTypeEvent
	return t
}

// NewTimerToken creates a token tracking a scheduled timer's outcome.
func NewTimerToken(processInstanceID, processKey, elementID, scopeID string) *Token {
	t := NewToken(processInstanceID, processKey, elementID, scopeID)
	t.Type = TokenTypeTimer
	return t
}

// ToJSON serializes the token.
func (t *Token) ToJSON() ([]byte, error) { return json.Marshal(t) }

// FromJSON deserializes the token.
func (t *Token) FromJSON(data []byte) error { return json.Unmarshal(data, t) }

// MoveTo advances the token to a new current element, remembering where
// it came from.
func (t *Token) MoveTo(elementID string) {
	t.PreviousElementID = t.CurrentElementID
	t.CurrentElementID = elementID
	t.UpdatedAt = time.Now()
}

// SetState transitions the token's state, stamping CompletedAt on terminal
// states.
func (t *Token) SetState(state TokenState) {
	t.State = state
	t.UpdatedAt = time.Now()
	if t.IsTerminal() {
		now := time.Now()
		t.CompletedAt = &now
	}
}

// SetVariable sets a scope-local variable.
func (t *Token) SetVariable(key string, value interface{}) {
	if t.Variables == nil {
		t.Variables = make(map[string]interface{})
	}
	t.Variables[key] = value
	t.UpdatedAt = time.Now()
}

// GetVariable reads a scope-local variable.
func (t *Token) GetVariable(key string) (interface{}, bool) {
	value, exists := t.Variables[key]
	return value, exists
}

// SetVariables merges variables into the token's data, overwriting
// existing keys.
func (t *Token) SetVariables(variables map[string]interface{}) {
	if t.Variables == nil {
		t.Variables = make(map[string]interface{})
	}
	for key, value := range variables {
		t.Variables[key] = value
	}
	t.UpdatedAt = time.Now()
}

// SetExecutionContext sets an execution-context field, distinct from
// process data (used for bookkeeping like IsFromTimerCallback).
func (t *Token) SetExecutionContext(key string, value interface{}) {
	if t.ExecutionContext == nil {
		t.ExecutionContext = make(map[string]interface{})
	}
	t.ExecutionContext[key] = value
	t.UpdatedAt = time.Now()
}

// GetExecutionContext reads an execution-context field.
func (t *Token) GetExecutionContext(key string) (interface{}, bool) {
	if t.ExecutionContext == nil {
		return nil, false
	}
	value, exists := t.ExecutionContext[key]
	return value, exists
}

// SetWaitingFor marks the token as suspended on an external event.
func (t *Token) SetWaitingFor(waitingFor string) {
	t.WaitingFor = waitingFor
	t.State = TokenStateWaiting
	t.UpdatedAt = time.Now()
}

// ClearWaitingFor resumes a waiting token back to ACTIVE.
func (t *Token) ClearWaitingFor() {
	t.WaitingFor = ""
	if t.State == TokenStateWaiting {
		t.State = TokenStateActive
	}
	t.UpdatedAt = time.Now()
}

// AddChildToken records a child token spawned from this one (parallel
// gateway fan-out, subprocess entry).
func (t *Token) AddChildToken(childTokenID string) {
	t.ChildTokenIDs = append(t.ChildTokenIDs, childTokenID)
	t.UpdatedAt = time.Now()
}

// RemoveChildToken forgets a previously recorded child token.
func (t *Token) RemoveChildToken(childTokenID string) {
	for i, id := range t.ChildTokenIDs {
		if id == childTokenID {
			t.ChildTokenIDs = append(t.ChildTokenIDs[:i], t.ChildTokenIDs[i+1:]...)
			break
		}
	}
	t.UpdatedAt = time.Now()
}

// HasChildTokens reports whether the token has spawned children.
func (t *Token) HasChildTokens() bool { return len(t.ChildTokenIDs) > 0 }

// AddBoundaryTimer records a boundary timer attached while this token
// occupies an activity.
func (t *Token) AddBoundaryTimer(timerID string) {
	t.BoundaryTimerIDs = append(t.BoundaryTimerIDs, timerID)
	t.UpdatedAt = time.Now()
}

// RemoveBoundaryTimer forgets a boundary timer, e.g. once it fires or the
// activity completes.
func (t *Token) RemoveBoundaryTimer(timerID string) {
	for i, id := range t.BoundaryTimerIDs {
		if id == timerID {
			t.BoundaryTimerIDs = append(t.BoundaryTimerIDs[:i], t.BoundaryTimerIDs[i+1:]...)
			break
		}
	}
	t.UpdatedAt = time.Now()
}

// HasBoundaryTimers reports whether any boundary timers are attached.
func (t *Token) HasBoundaryTimers() bool { return len(t.BoundaryTimerIDs) > 0 }

// GetBoundaryTimers returns a copy of the attached boundary timer IDs.
func (t *Token) GetBoundaryTimers() []string {
	return append([]string{}, t.BoundaryTimerIDs...)
}

// IsActive reports whether the token is currently runnable.
func (t *Token) IsActive() bool { return t.State == TokenStateActive }

// IsWaiting reports whether the token is suspended on an external event.
func (t *Token) IsWaiting() bool { return t.State == TokenStateWaiting }

// IsTerminal reports whether the token has reached a final state.
func (t *Token) IsTerminal() bool {
	switch t.State {
	case TokenStateCompleted, TokenStateCancelled, TokenStateError:
		return true
	default:
		return false
	}
}

// IsCompleted is retained for call-site compatibility with the teacher's
// naming; it is equivalent to IsTerminal.
func (t *Token) IsCompleted() bool { return t.IsTerminal() }

// SetTimerCallback marks the token as resumed from a fired timer.
func (t *Token) SetTimerCallback() { t.SetExecutionContext(ContextKeyTimerCallback, true) }

// ClearTimerCallback removes the timer-callback marker.
func (t *Token) ClearTimerCallback() {
	delete(t.ExecutionContext, ContextKeyTimerCallback)
	t.UpdatedAt = time.Now()
}

// IsFromTimerCallback reports whether the token's last resume came from a
// timer firing.
func (t *Token) IsFromTimerCallback() bool {
	value, exists := t.GetExecutionContext(ContextKeyTimerCallback)
	if !exists {
		return false
	}
	isCallback, ok := value.(bool)
	return ok && isCallback
}

// Clone creates an independent copy of the token for parallel-gateway
// fan-out, with a fresh ID and the original recorded as its parent.
func (t *Token) Clone() *Token {
	now := time.Now()
	clone := &Token{
		TokenID:           GenerateID(),
		ProcessInstanceID: t.ProcessInstanceID,
		ProcessKey:        t.ProcessKey,
		CurrentElementID:  t.CurrentElementID,
		PreviousElementID: t.PreviousElementID,
		ScopeID:           t.ScopeID,
		State:             t.State,
		Type:              t.Type,
		Variables:         make(map[string]interface{}),
		ExecutionContext:  make(map[string]interface{}),
		ParentTokenID:     t.TokenID,
		ChildTokenIDs:     make([]string, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for key, value := range t.Variables {
		clone.Variables[key] = value
	}
	for key, value := range t.ExecutionContext {
		clone.ExecutionContext[key] = value
	}
	return clone
}
