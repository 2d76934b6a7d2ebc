/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package saga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
	"github.com/atombpmn/flowrt/src/jobs"
)

func TestOrchestrator_ExecuteAllStepsSucceed(t *testing.T) {
	registry := jobs.NewRegistry(logger.NewComponentLogger("test"))
	registry.RegisterFunc("reserve-funds", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"reserved": true}, nil
	})
	registry.RegisterFunc("ship-order", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"shipped": true}, nil
	})

	o := NewOrchestrator("proc-1", registry, nil)
	o.AddStep("reserve-funds", "release-funds", nil)
	o.AddStep("ship-order", "cancel-shipment", nil)

	result, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SagaStatusCompleted, result.Status)
	assert.True(t, result.Data["reserved"].(bool))
	assert.True(t, result.Data["shipped"].(bool))

	for _, step := range o.Saga().Steps {
		assert.True(t, step.Completed)
		assert.False(t, step.Compensated)
	}
}

func TestOrchestrator_FailureCompensatesCompletedStepsInReverse(t *testing.T) {
	var compensated []string

	registry := jobs.NewRegistry(logger.NewComponentLogger("test"))
	registry.RegisterFunc("reserve-funds", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return nil, nil
	})
	registry.RegisterFunc("release-funds", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		compensated = append(compensated, "release-funds")
		return nil, nil
	})
	registry.RegisterFunc("ship-order", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return nil, nil
	})
	registry.RegisterFunc("cancel-shipment", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		compensated = append(compensated, "cancel-shipment")
		return nil, nil
	})

	o := NewOrchestrator("proc-1", registry, nil)
	o.AddStep("reserve-funds", "release-funds", nil)
	o.AddStep("ship-order", "cancel-shipment", nil)
	o.AddStep("charge-card", "refund-card", map[string]interface{}{"should_fail": true})

	result, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.SagaStatusCompensated, result.Status)
	assert.Equal(t, []string{"cancel-shipment", "release-funds"}, compensated)

	steps := o.Saga().Steps
	assert.True(t, steps[0].Compensated)
	assert.True(t, steps[1].Compensated)
	assert.False(t, steps[2].Completed)
}

func TestOrchestrator_ParallelGroupFailurePropagates(t *testing.T) {
	registry := jobs.NewRegistry(logger.NewComponentLogger("test"))
	registry.RegisterFunc("charge-warehouse-a", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"a": true}, nil
	})
	registry.RegisterFunc("undo-warehouse-a", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return nil, nil
	})

	o := NewOrchestrator("proc-1", registry, nil)
	stepA := models.NewSagaStep("charge-warehouse-a", "undo-warehouse-a", nil)
	stepB := models.NewSagaStep("charge-warehouse-b", "", map[string]interface{}{"should_fail": true})
	o.CreateParallelGroup(stepA, stepB)

	result, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.SagaStatusCompensated, result.Status)
}

func TestOrchestrator_NoStepsCompletesImmediately(t *testing.T) {
	registry := jobs.NewRegistry(logger.NewComponentLogger("test"))
	o := NewOrchestrator("proc-1", registry, nil)

	result, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SagaStatusCompleted, result.Status)
}
