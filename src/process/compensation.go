/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package process

import (
	"context"
	"fmt"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
	"github.com/atombpmn/flowrt/src/saga"
)

// RegisterCompensationHandler records activityID's undo handler within
// the scope it completed in. No executor in this package calls it: the
// engine registers no handler by itself when an activity completes, so
// handlers exist only where a caller of ComponentInterface adds them.
func (c *Component) RegisterCompensationHandler(processInstanceID, scopeID, activityID, handlerElementID string, data map[string]interface{}) error {
	scope := saga.NewCompensationScope(processInstanceID, scopeID, c.storage)
	return scope.Register(context.Background(), activityID, handlerElementID, data)
}

// CompensateScope runs every compensation handler registered directly
// within token's scope, in reverse registration order. Each handler
// element runs by spinning up a fresh execution token positioned at the
// handler's element ID and re-entering the engine, the same way a
// boundary event or message callback resumes execution at an arbitrary
// node.
func (c *Component) CompensateScope(token *models.Token) error {
	if !c.IsReady() {
		return fmt.Errorf("process component not ready")
	}

	instance, err := c.storage.LoadProcessInstance(token.ProcessInstanceID)
	if err != nil {
		return fmt.Errorf("compensate scope: loading process instance: %w", err)
	}

	scope := saga.NewCompensationScope(token.ProcessInstanceID, token.ScopeID, c.storage)
	return scope.Compensate(context.Background(), func(ctx context.Context, handler *models.CompensationHandler) error {
		handlerToken := models.NewToken(handler.ProcessInstanceID, instance.ProcessKey, handler.HandlerElementID, handler.ScopeID)
		handlerToken.Variables = handler.Data
		handlerToken.State = models.TokenStateCompensation

		if err := c.storage.SaveToken(handlerToken); err != nil {
			return fmt.Errorf("saving compensation handler token: %w", err)
		}

		logger.Info("running compensation handler",
			logger.String("process_instance_id", handler.ProcessInstanceID),
			logger.String("activity_id", handler.ActivityID),
			logger.String("handler_element_id", handler.HandlerElementID))

		return c.engine.ExecuteToken(handlerToken)
	})
}
