/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atombpmn/flowrt/src/core/restapi/middleware"
	"github.com/atombpmn/flowrt/src/core/restapi/models"
	"github.com/atombpmn/flowrt/src/core/restapi/utils"
	"github.com/atombpmn/flowrt/src/process"
)

// ProcessHandler exposes the process instance start/status boundary.
type ProcessHandler struct {
	process *process.Component
}

// NewProcessHandler creates a new process handler bound directly to the
// engine's process component.
func NewProcessHandler(proc *process.Component) *ProcessHandler {
	return &ProcessHandler{process: proc}
}

// RegisterRoutes registers process and signal routes on the given group.
func (h *ProcessHandler) RegisterRoutes(rg *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	processes := rg.Group("/processes")
	processes.POST("", h.startProcess)
	processes.GET("/:id", h.getProcess)

	rg.POST("/signals", h.broadcastSignal)
}

// broadcastSignalRequest mirrors the engine's BroadcastSignal arguments;
// there is no dedicated signal DTO in models since signals have no
// correlation key or tenant scoping, unlike messages.
type broadcastSignalRequest struct {
	SignalName string                 `json:"signal_name" binding:"required"`
	Variables  map[string]interface{} `json:"variables,omitempty"`
}

func (h *ProcessHandler) broadcastSignal(c *gin.Context) {
	var req broadcastSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}

	if err := h.process.BroadcastSignal(req.SignalName, req.Variables); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(models.InternalServerError(err.Error()), requestID(c)))
		return
	}

	c.JSON(http.StatusAccepted, models.SuccessResponse(gin.H{"signal_name": req.SignalName}, requestID(c)))
}

func (h *ProcessHandler) startProcess(c *gin.Context) {
	var req models.StartProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.BadRequestError(err.Error()), requestID(c)))
		return
	}

	instance, err := h.process.StartProcessInstance(req.ProcessKey, req.Variables)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(models.InternalServerError(err.Error()), requestID(c)))
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse(instance, requestID(c)))
}

func (h *ProcessHandler) getProcess(c *gin.Context) {
	instanceID := c.Param("id")

	instance, err := h.process.GetProcessInstanceStatus(instanceID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse(models.ProcessNotFoundError(instanceID), requestID(c)))
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(instance, requestID(c)))
}

func requestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return utils.GenerateSecureRequestID("req")
}
