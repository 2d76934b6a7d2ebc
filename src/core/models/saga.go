/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import "time"

// SagaStatus is the lifecycle state of a SagaOrchestrator run.
type SagaStatus string

const (
	SagaStatusActive       SagaStatus = "ACTIVE"
	SagaStatusCompleted    SagaStatus = "COMPLETED"
	SagaStatusCompensating SagaStatus = "COMPENSATING"
	SagaStatusCompensated  SagaStatus = "COMPENSATED"
	SagaStatusFailed       SagaStatus = "FAILED"
)

// SagaStep is one forward action plus its paired compensation action.
// ActionID/CompensationID name service-task-registry entries; Data is the
// step's own input/output payload, separate from process token data.
type SagaStep struct {
	ActionID        string                 `json:"action_id"`
	CompensationID  string                 `json:"compensation_id,omitempty"`
	Data            map[string]interface{} `json:"data"`
	Completed       bool                   `json:"completed"`
	Compensated     bool                   `json:"compensated"`
}

// NewSagaStep creates a step paired with its compensation action.
func NewSagaStep(actionID, compensationID string, data map[string]interface{}) *SagaStep {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &SagaStep{ActionID: actionID, CompensationID: compensationID, Data: data}
}

// ParallelStepGroup is a set of steps executed concurrently; the group as
// a whole succeeds only if every member step succeeds.
type ParallelStepGroup struct {
	Steps []*SagaStep `json:"steps"`
}

// SagaResult is the outcome of SagaOrchestrator.Execute.
type SagaResult struct {
	Status    SagaStatus             `json:"status"`
	Data      map[string]interface{} `json:"data"`
	FinishedAt time.Time             `json:"finished_at"`
}

// Saga is the persisted record of an orchestrated sequence of
// compensable steps, one per saga/transaction-subprocess instance.
type Saga struct {
	SagaID             string               `json:"saga_id"`
	ProcessInstanceID  string               `json:"process_instance_id"`
	Steps              []*SagaStep          `json:"steps"`
	ParallelGroups     []*ParallelStepGroup `json:"parallel_groups"`
	Status             SagaStatus           `json:"status"`
	CompensationNeeded bool                 `json:"compensation_required"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewSaga creates an empty saga ready to accumulate steps.
func NewSaga(processInstanceID string) *Saga {
	now := time.Now()
	return &Saga{
		SagaID:            GenerateID(),
		ProcessInstanceID: processInstanceID,
		Steps:             make([]*SagaStep, 0),
		ParallelGroups:    make([]*ParallelStepGroup, 0),
		Status:            SagaStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// AddStep appends a sequential step to the saga.
func (s *Saga) AddStep(step *SagaStep) {
	s.Steps = append(s.Steps, step)
	s.UpdatedAt = time.Now()
}

// AddParallelGroup registers a set of steps that execute concurrently.
func (s *Saga) AddParallelGroup(group *ParallelStepGroup) {
	s.ParallelGroups = append(s.ParallelGroups, group)
	s.UpdatedAt = time.Now()
}

// CompletedSteps returns steps that completed successfully, in the order
// they were recorded. Compensation walks this list in reverse.
func (s *Saga) CompletedSteps() []*SagaStep {
	completed := make([]*SagaStep, 0, len(s.Steps))
	for _, step := range s.Steps {
		if step.Completed {
			completed = append(completed, step)
		}
	}
	return completed
}
