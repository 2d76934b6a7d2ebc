/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package saga hosts the transaction-subprocess and multi-step
// compensation machinery: SagaOrchestrator runs a sequence of
// action/compensation step pairs the way a BPMN transaction subprocess
// or an explicit saga-style service orchestration does, and
// CompensationScope tracks the undo handlers registered by activities
// that completed inside one scope so they can be run in reverse order
// when that scope is thrown a compensation event.
package saga

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
	"github.com/atombpmn/flowrt/src/jobs"
	"github.com/atombpmn/flowrt/src/storage"
)

// Orchestrator runs a models.Saga to completion or, on the first step
// failure, compensates every step that already completed, in reverse
// order. Steps resolve through the same jobs.Registry a service task
// node uses, so a saga step and a service task share one handler
// namespace.
type Orchestrator struct {
	saga    *models.Saga
	jobs    *jobs.Registry
	storage storage.Storage
	logger  logger.ComponentLogger
}

// NewOrchestrator creates an orchestrator for a fresh saga scoped to one
// process instance. store may be nil, in which case the saga's progress
// is tracked in memory only (used by tests and by callers that persist
// the result themselves).
func NewOrchestrator(processInstanceID string, jobRegistry *jobs.Registry, store storage.Storage) *Orchestrator {
	return &Orchestrator{
		saga:    models.NewSaga(processInstanceID),
		jobs:    jobRegistry,
		storage: store,
		logger:  logger.NewComponentLogger("saga"),
	}
}

// AddStep appends a sequential step, run in the order it was added.
func (o *Orchestrator) AddStep(actionID, compensationID string, data map[string]interface{}) *models.SagaStep {
	step := models.NewSagaStep(actionID, compensationID, data)
	o.saga.AddStep(step)
	return step
}

// CreateParallelGroup registers a set of steps that run concurrently
// once every prior sequential step has completed. The group as a whole
// fails if any member step fails.
func (o *Orchestrator) CreateParallelGroup(steps ...*models.SagaStep) *models.ParallelStepGroup {
	group := &models.ParallelStepGroup{Steps: steps}
	o.saga.AddParallelGroup(group)
	return group
}

// Saga exposes the underlying record, mostly for callers that want to
// inspect step state after Execute returns.
func (o *Orchestrator) Saga() *models.Saga { return o.saga }

// Execute runs every sequential step in order, then every parallel
// group in order, merging each step's output into the result data. The
// first failure, sequential or within a parallel group, stops forward
// execution and compensates everything that already completed.
func (o *Orchestrator) Execute(ctx context.Context) (*models.SagaResult, error) {
	o.saga.Status = models.SagaStatusActive
	o.persist(ctx)

	result := make(map[string]interface{})

	for _, step := range o.saga.Steps {
		if err := o.executeStep(ctx, step, result); err != nil {
			return o.handleFailure(ctx, err)
		}
		o.persist(ctx)
	}

	for _, group := range o.saga.ParallelGroups {
		if err := o.executeParallelGroup(ctx, group, result); err != nil {
			return o.handleFailure(ctx, err)
		}
		o.persist(ctx)
	}

	o.saga.Status = models.SagaStatusCompleted
	o.persist(ctx)

	return &models.SagaResult{
		Status:     o.saga.Status,
		Data:       result,
		FinishedAt: time.Now(),
	}, nil
}

// executeStep runs one step's action and merges its output into result.
// A step whose Data carries should_fail: true is forced to fail without
// invoking the registry, the same escape hatch pythmata's saga tests use
// to exercise compensation deterministically.
func (o *Orchestrator) executeStep(ctx context.Context, step *models.SagaStep, result map[string]interface{}) error {
	if shouldFail(step.Data) {
		return fmt.Errorf("saga: step %s forced to fail", step.ActionID)
	}

	_, output, err := o.jobs.Execute(ctx, o.saga.ProcessInstanceID, step.ActionID, step.ActionID, nil, step.Data)
	if err != nil {
		return fmt.Errorf("saga: step %s failed: %w", step.ActionID, err)
	}

	step.Completed = true
	for k, v := range output {
		result[k] = v
	}

	o.logger.Info("saga step completed",
		logger.String("saga_id", o.saga.SagaID),
		logger.String("action_id", step.ActionID))
	return nil
}

// executeParallelGroup fans the group's steps out over goroutines and
// waits for all of them; no ecosystem errgroup appears anywhere in the
// retrieval pack so this uses stdlib sync directly. Steps are launched
// in ActionID order; the goroutines then run concurrently, so the order
// in which the steps execute and finish is not deterministic.
func (o *Orchestrator) executeParallelGroup(ctx context.Context, group *models.ParallelStepGroup, result map[string]interface{}) error {
	steps := make([]*models.SagaStep, len(group.Steps))
	copy(steps, group.Steps)
	sort.Slice(steps, func(i, j int) bool { return steps[i].ActionID < steps[j].ActionID })

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, step := range steps {
		step := step
		wg.Add(1)
		go func() {
			defer wg.Done()

			local := make(map[string]interface{})
			err := o.executeStep(ctx, step, local)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for k, v := range local {
				result[k] = v
			}
		}()
	}

	wg.Wait()
	return firstErr
}

// handleFailure walks the saga's completed steps in reverse and
// compensates each one, mirroring pythmata's _handle_failure: the whole
// saga ends COMPENSATED even if an individual compensation action
// itself errors, since by this point there's no further forward path to
// retry.
func (o *Orchestrator) handleFailure(ctx context.Context, cause error) (*models.SagaResult, error) {
	o.saga.Status = models.SagaStatusCompensating
	o.saga.CompensationNeeded = true
	o.persist(ctx)

	o.logger.Warn("saga execution failed, compensating",
		logger.String("saga_id", o.saga.SagaID),
		logger.String("error", cause.Error()))

	completed := o.saga.CompletedSteps()
	for _, group := range o.saga.ParallelGroups {
		for _, step := range group.Steps {
			if step.Completed {
				completed = append(completed, step)
			}
		}
	}
	for i := len(completed) - 1; i >= 0; i-- {
		o.compensateStep(ctx, completed[i])
	}

	o.saga.Status = models.SagaStatusCompensated
	o.persist(ctx)

	return &models.SagaResult{
		Status:     o.saga.Status,
		FinishedAt: time.Now(),
	}, cause
}

// compensateStep runs a completed step's compensation action. A step
// with no CompensationID or one already compensated is a no-op, so
// handleFailure can call this unconditionally while walking the
// completed list.
func (o *Orchestrator) compensateStep(ctx context.Context, step *models.SagaStep) {
	if !step.Completed || step.Compensated {
		return
	}
	if step.CompensationID == "" {
		step.Compensated = true
		return
	}

	if _, _, err := o.jobs.Execute(ctx, o.saga.ProcessInstanceID, step.CompensationID, step.CompensationID, nil, step.Data); err != nil {
		o.logger.Error("saga compensation failed",
			logger.String("saga_id", o.saga.SagaID),
			logger.String("action_id", step.ActionID),
			logger.String("compensation_id", step.CompensationID),
			logger.String("error", err.Error()))
		return
	}

	step.Compensated = true
	o.logger.Info("saga step compensated",
		logger.String("saga_id", o.saga.SagaID),
		logger.String("action_id", step.ActionID))
}

func (o *Orchestrator) persist(ctx context.Context) {
	if o.storage == nil {
		return
	}
	if err := o.storage.SaveSaga(ctx, o.saga); err != nil {
		o.logger.Error("failed to persist saga",
			logger.String("saga_id", o.saga.SagaID),
			logger.String("error", err.Error()))
	}
}

func shouldFail(data map[string]interface{}) bool {
	v, ok := data["should_fail"]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
