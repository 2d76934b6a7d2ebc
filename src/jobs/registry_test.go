/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/models"
)

func TestRegistry_ExecuteUnknownTaskType(t *testing.T) {
	r := NewRegistry(logger.NewComponentLogger("test"))

	job, result, err := r.Execute(context.Background(), "proc-1", "task-1", "http", nil, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, models.IsKind(err, models.ErrServiceTaskFailed))
	assert.Equal(t, models.JobStatusFailed, job.Status)
}

func TestRegistry_ExecuteSuccess(t *testing.T) {
	r := NewRegistry(logger.NewComponentLogger("test"))
	r.RegisterFunc("echo", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"echoed": properties["message"]}, nil
	})

	job, result, err := r.Execute(context.Background(), "proc-1", "task-1", "echo",
		map[string]string{"message": "hello"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", result["echoed"])
	assert.Equal(t, models.JobStatusCompleted, job.Status)
}

func TestRegistry_ExecuteHandlerError(t *testing.T) {
	r := NewRegistry(logger.NewComponentLogger("test"))
	r.RegisterFunc("boom", func(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
		return nil, errors.New("connector unreachable")
	})

	job, result, err := r.Execute(context.Background(), "proc-1", "task-1", "boom", nil, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, models.IsKind(err, models.ErrServiceTaskFailed))
	assert.Equal(t, models.JobStatusFailed, job.Status)
}

func TestRegistry_Types(t *testing.T) {
	r := NewRegistry(logger.NewComponentLogger("test"))
	r.RegisterFunc("a", func(ctx context.Context, p map[string]string, v map[string]interface{}) (map[string]interface{}, error) { return nil, nil })
	r.RegisterFunc("b", func(ctx context.Context, p map[string]string, v map[string]interface{}) (map[string]interface{}, error) { return nil, nil })

	types := r.Types()
	assert.ElementsMatch(t, []string{"a", "b"}, types)
}
