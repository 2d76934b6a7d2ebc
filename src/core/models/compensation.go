/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import "time"

// CompensationHandler is a registered undo action for one completed
// activity inside a process instance. Handlers are keyed by
// (ProcessInstanceID, ActivityID) and also appended to a per-instance
// ordered list so compensation can run in reverse completion order even
// when ActivityID is looked up directly for a targeted compensation.
type CompensationHandler struct {
	ProcessInstanceID string                 `json:"process_instance_id"`
	ActivityID        string                 `json:"activity_id"`
	ScopeID           string                 `json:"scope_id,omitempty"`
	HandlerElementID  string                 `json:"handler_element_id"`
	Data              map[string]interface{} `json:"data"`
	RegisteredAt      time.Time              `json:"registered_at"`
}

// NewCompensationHandler registers an undo handler for an activity that
// just completed successfully.
func NewCompensationHandler(processInstanceID, activityID, scopeID, handlerElementID string, data map[string]interface{}) *CompensationHandler {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &CompensationHandler{
		ProcessInstanceID: processInstanceID,
		ActivityID:        activityID,
		ScopeID:           scopeID,
		HandlerElementID:  handlerElementID,
		Data:              data,
		RegisteredAt:      time.Now(),
	}
}
