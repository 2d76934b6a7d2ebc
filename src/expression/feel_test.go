/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atombpmn/flowrt/src/core/logger"
)

func TestConditionEvaluator_SimpleComparison(t *testing.T) {
	ce := NewConditionEvaluator(logger.NewComponentLogger("test"))

	ok, err := ce.EvaluateCondition(map[string]interface{}{"status": "approved"}, "${status} == 'approved'")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ce.EvaluateCondition(map[string]interface{}{"status": "pending"}, "${status} == 'approved'")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConditionEvaluator_LogicalAndComparison(t *testing.T) {
	ce := NewConditionEvaluator(logger.NewComponentLogger("test"))

	ok, err := ce.EvaluateCondition(map[string]interface{}{
		"amount":   500,
		"approved": true,
	}, "=approved and amount < 1000")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConditionEvaluator_MissingVariableIsFalsy(t *testing.T) {
	ce := NewConditionEvaluator(logger.NewComponentLogger("test"))

	ok, err := ce.EvaluateCondition(map[string]interface{}{}, "=unknownFlag")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConditionEvaluator_NestedPath(t *testing.T) {
	ce := NewConditionEvaluator(logger.NewComponentLogger("test"))

	vars := map[string]interface{}{
		"response": map[string]interface{}{
			"body": map[string]interface{}{
				"code": float64(200),
			},
		},
	}
	ok, err := ce.EvaluateCondition(vars, "=response.body.code == 200")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFeelEvaluator_MissingNestedPathIsNull(t *testing.T) {
	fe := NewFeelEvaluator(logger.NewComponentLogger("test"))

	result, err := fe.Evaluate("response.body.missing", map[string]interface{}{
		"response": map[string]interface{}{"body": map[string]interface{}{}},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}
