/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atombpmn/flowrt/src/core/restapi/middleware"
	"github.com/atombpmn/flowrt/src/core/restapi/models"
	"github.com/atombpmn/flowrt/src/messages"
)

// MessagesHandler exposes the message delivery boundary (signal
// broadcast lives on ProcessHandler since it's process.Component's API).
type MessagesHandler struct {
	messages *messages.Component
}

// NewMessagesHandler creates a new messages handler bound directly to the
// messages component.
func NewMessagesHandler(msgs *messages.Component) *MessagesHandler {
	return &MessagesHandler{messages: msgs}
}

// RegisterRoutes registers the message route on the given group; signal
// routes are registered by ProcessHandler.
func (h *MessagesHandler) RegisterRoutes(rg *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	rg.POST("/messages", h.publishMessage)
}

func (h *MessagesHandler) publishMessage(c *gin.Context) {
	var req models.PublishMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}

	var ttl *time.Duration
	if req.TTLSeconds > 0 {
		d := time.Duration(req.TTLSeconds) * time.Second
		ttl = &d
	}

	result, err := h.messages.PublishMessage(c.Request.Context(), req.TenantID, req.MessageName, req.CorrelationKey, "", req.Variables, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(models.InternalServerError(err.Error()), requestID(c)))
		return
	}

	c.JSON(http.StatusAccepted, models.SuccessResponse(result, requestID(c)))
}
