/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package jobs hosts the registry of externally contributed service task
// implementations. There is no worker-lease protocol here: a service task
// is a named, synchronous handler invoked in-process by the NodeExecutor,
// the same way a ScriptExecutor runs a script body.
package jobs

import (
	"context"
	"sync"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
)

// Handler is the contract a registered service task type must satisfy:
// execute(context, properties) against the current token's variable scope,
// returning the variables to merge back into that scope.
type Handler interface {
	Execute(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error)

func (f HandlerFunc) Execute(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
	return f(ctx, properties, variables)
}

// Registry is the directory of service task types seeded at boot and
// consulted by the NodeExecutor whenever it dispatches a serviceTask node.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logger.ComponentLogger
}

// NewRegistry creates an empty service task registry.
func NewRegistry(log logger.ComponentLogger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   log,
	}
}

// Register adds a handler under the given task type name, overwriting any
// previous registration for that name.
func (r *Registry) Register(taskType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[taskType] = handler
	r.logger.Info("service task handler registered", logger.String("task_type", taskType))
}

// RegisterFunc is a convenience wrapper around Register for a plain function.
func (r *Registry) RegisterFunc(taskType string, fn HandlerFunc) {
	r.Register(taskType, fn)
}

// Lookup returns the handler registered for taskType, if any.
func (r *Registry) Lookup(taskType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[taskType]
	return h, ok
}

// Types lists every registered task type name.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Execute runs the handler registered for taskType and produces a Job
// record describing the attempt, for incident reporting and retry
// accounting. A missing handler or a handler error both return an
// EngineError tagged ErrServiceTaskFailed and a Job marked failed; the
// caller decides whether to create an incident or consume the remaining
// retries on the task's retry definition.
func (r *Registry) Execute(
	ctx context.Context,
	processInstanceID, elementID, taskType string,
	properties map[string]string,
	variables map[string]interface{},
) (*models.Job, map[string]interface{}, error) {
	job := models.NewJob(taskType, processInstanceID, elementID)
	job.MarkAsStarted(taskType)

	handler, ok := r.Lookup(taskType)
	if !ok {
		job.MarkAsFailed("no handler registered for task type " + taskType)
		return job, nil, models.NewEngineError(
			models.ErrServiceTaskFailed, processInstanceID, elementID,
			"no service task handler registered for type "+taskType, nil)
	}

	result, err := handler.Execute(ctx, properties, variables)
	if err != nil {
		job.MarkAsFailed(err.Error())
		r.logger.Warn("service task execution failed",
			logger.String("task_type", taskType),
			logger.String("element_id", elementID),
			logger.String("error", err.Error()))
		return job, nil, models.NewEngineError(
			models.ErrServiceTaskFailed, processInstanceID, elementID,
			"service task "+taskType+" failed", err)
	}

	job.MarkAsCompleted()
	job.Variables = result
	return job, result, nil
}
