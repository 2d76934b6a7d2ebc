/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import "time"

// SignalSubscription records a token waiting on a named signal, broadcast
// rather than correlated: every matching subscription is resumed when the
// signal fires, unlike a message which resolves exactly one subscriber.
type SignalSubscription struct {
	ID                string    `json:"id"`
	ProcessInstanceID string    `json:"process_instance_id"`
	TokenID           string    `json:"token_id"`
	ElementID         string    `json:"element_id"`
	SignalName        string    `json:"signal_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewSignalSubscription registers a token as waiting for signalName.
func NewSignalSubscription(processInstanceID, tokenID, elementID, signalName string) *SignalSubscription {
	return &SignalSubscription{
		ID:                GenerateID(),
		ProcessInstanceID: processInstanceID,
		TokenID:           tokenID,
		ElementID:         elementID,
		SignalName:        signalName,
		CreatedAt:         time.Now(),
	}
}
