/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package script

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atombpmn/flowrt/src/core/logger"
)

func TestExecutor_SetVariableAndResult(t *testing.T) {
	exec := NewExecutor(logger.NewComponentLogger("test"), time.Second)

	result, err := exec.Execute(context.Background(), `
		set_variable("approved", amount < 1000);
		var result = amount * 2;
	`, map[string]interface{}{"amount": int64(100)})

	require.NoError(t, err)
	assert.Equal(t, true, result.Variables["approved"])
	assert.EqualValues(t, 200, result.Value)
}

func TestExecutor_ScriptError(t *testing.T) {
	exec := NewExecutor(logger.NewComponentLogger("test"), time.Second)

	_, err := exec.Execute(context.Background(), `throw new Error("boom")`, nil)
	require.Error(t, err)
}

func TestExecutor_Timeout(t *testing.T) {
	exec := NewExecutor(logger.NewComponentLogger("test"), 50*time.Millisecond)

	_, err := exec.Execute(context.Background(), `while (true) {}`, nil)
	require.Error(t, err)
}
