/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package saga

import (
	"context"
	"fmt"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
	"github.com/atombpmn/flowrt/src/storage"
)

// HandlerExecutor runs one compensation handler element and reports
// whether the undo action itself succeeded. CompensationScope only
// knows which handlers are registered and in what order to run them;
// running the handler element (a BPMN compensation handler subprocess
// or task) belongs to src/process, which supplies this callback.
type HandlerExecutor func(ctx context.Context, handler *models.CompensationHandler) error

// CompensationScope tracks the undo handlers registered by activities
// that completed directly within one scope (a transaction subprocess or
// the process root) and runs them in reverse registration order when
// the scope is thrown a compensation event.
//
// Per the engine's decision on nested transaction boundaries, a scope
// only ever compensates handlers registered directly within it: an
// outer saga must explicitly re-throw compensation to reach further
// out, there is no implicit walk up the scope tree.
type CompensationScope struct {
	processInstanceID string
	scopeID           string
	storage           storage.Storage
	logger            logger.ComponentLogger
}

// NewCompensationScope binds a scope to its backing handler registry.
// scopeID is the models.Scope.ScopeID of the transaction subprocess (or
// "" for the process instance's root scope).
func NewCompensationScope(processInstanceID, scopeID string, store storage.Storage) *CompensationScope {
	return &CompensationScope{
		processInstanceID: processInstanceID,
		scopeID:           scopeID,
		storage:           store,
		logger:            logger.NewComponentLogger("saga"),
	}
}

// Register records activityID's undo handler. Called once an activity
// inside the scope completes successfully and carries an attached
// compensation handler.
func (s *CompensationScope) Register(ctx context.Context, activityID, handlerElementID string, data map[string]interface{}) error {
	handler := models.NewCompensationHandler(s.processInstanceID, activityID, s.scopeID, handlerElementID, data)
	return s.storage.RegisterCompensationHandler(ctx, handler)
}

// Compensate runs every handler registered directly within this scope,
// in reverse registration order, via run. A handler failure is logged
// and counted but does not stop the remaining handlers from running:
// compensation is already the failure-recovery path, so a second
// failure there should not silently orphan the rest of the scope's
// undo work.
func (s *CompensationScope) Compensate(ctx context.Context, run HandlerExecutor) error {
	handlers, err := s.storage.ListCompensationHandlers(ctx, s.processInstanceID)
	if err != nil {
		return fmt.Errorf("saga: listing compensation handlers: %w", err)
	}

	scoped := make([]*models.CompensationHandler, 0, len(handlers))
	for _, h := range handlers {
		if h.ScopeID == s.scopeID {
			scoped = append(scoped, h)
		}
	}

	var failed int
	for i := len(scoped) - 1; i >= 0; i-- {
		h := scoped[i]
		if err := run(ctx, h); err != nil {
			s.logger.Error("compensation handler failed",
				logger.String("activity_id", h.ActivityID),
				logger.String("handler_element_id", h.HandlerElementID),
				logger.String("error", err.Error()))
			failed++
			continue
		}
		s.logger.Info("compensation handler executed",
			logger.String("activity_id", h.ActivityID),
			logger.String("handler_element_id", h.HandlerElementID))
	}

	if failed > 0 {
		return fmt.Errorf("saga: %d of %d compensation handler(s) failed", failed, len(scoped))
	}
	return nil
}

// Handlers returns the handlers registered directly within this scope,
// in registration order, without running them. Used for inspection and
// by tests.
func (s *CompensationScope) Handlers(ctx context.Context) ([]*models.CompensationHandler, error) {
	all, err := s.storage.ListCompensationHandlers(ctx, s.processInstanceID)
	if err != nil {
		return nil, err
	}
	scoped := make([]*models.CompensationHandler, 0, len(all))
	for _, h := range all {
		if h.ScopeID == s.scopeID {
			scoped = append(scoped, h)
		}
	}
	return scoped, nil
}
