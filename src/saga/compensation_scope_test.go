/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atombpmn/flowrt/src/core/config"
	"github.com/atombpmn/flowrt/src/core/models"
	"github.com/atombpmn/flowrt/src/storage"
)

func newTestStorage(t *testing.T) storage.Storage {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.Directory = t.TempDir()
	cfg.Storage.Type = "badger"

	store, err := storage.New(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCompensationScope_CompensatesInReverseRegistrationOrder(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	scope := NewCompensationScope("proc-1", "scope-a", store)
	require.NoError(t, scope.Register(ctx, "reserve-inventory", "undo-reserve", nil))
	require.NoError(t, scope.Register(ctx, "charge-card", "refund-card", nil))

	var order []string
	err := scope.Compensate(ctx, func(ctx context.Context, h *models.CompensationHandler) error {
		order = append(order, h.ActivityID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"charge-card", "reserve-inventory"}, order)
}

func TestCompensationScope_IgnoresHandlersFromOtherScopes(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	outer := NewCompensationScope("proc-1", "", store)
	inner := NewCompensationScope("proc-1", "scope-a", store)
	require.NoError(t, outer.Register(ctx, "send-notification", "undo-notification", nil))
	require.NoError(t, inner.Register(ctx, "reserve-inventory", "undo-reserve", nil))

	handlers, err := inner.Handlers(ctx)
	require.NoError(t, err)
	require.Len(t, handlers, 1)
	assert.Equal(t, "reserve-inventory", handlers[0].ActivityID)
}

func TestCompensationScope_ContinuesAfterHandlerFailure(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	scope := NewCompensationScope("proc-1", "scope-a", store)
	require.NoError(t, scope.Register(ctx, "step-1", "undo-1", nil))
	require.NoError(t, scope.Register(ctx, "step-2", "undo-2", nil))

	var ran []string
	err := scope.Compensate(ctx, func(ctx context.Context, h *models.CompensationHandler) error {
		ran = append(ran, h.ActivityID)
		if h.ActivityID == "step-2" {
			return errors.New("undo-2 unavailable")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, []string{"step-2", "step-1"}, ran)
}
