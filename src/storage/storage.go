/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package storage implements the engine's StateManager: the single
// source of truth for tokens, scope variables, timers, message/signal
// subscriptions, and compensation handlers. Every state-mutating
// operation that can race against another worker goes through a
// compare-and-set path so exactly one of two concurrent writers wins.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/atombpmn/flowrt/src/core/config"
	"github.com/atombpmn/flowrt/src/core/models"
)

// ErrVersionConflict is returned by CAS-guarded writes when the caller's
// observed version no longer matches the stored one. Callers translate
// this into models.ErrTokenState.
var ErrVersionConflict = fmt.Errorf("storage: version conflict")

// ErrNotFound is returned when a lookup finds nothing.
var ErrNotFound = fmt.Errorf("storage: not found")

// StateManager is the engine's process-state backend. Implementations:
// BadgerStateManager (embedded, single-node) and RedisStateManager
// (shared, multi-node via WATCH/MULTI).
type StateManager interface {
	Init(ctx context.Context) error
	Close() error
	IsReady() bool

	// Tokens
	AddToken(ctx context.Context, token *models.Token) error
	GetToken(ctx context.Context, tokenID string) (*models.Token, error)
	// UpdateTokenState performs a compare-and-set write: it succeeds only
	// if the stored token's Version still equals expectedVersion, then
	// persists mutate's result and bumps the version. Returns
	// ErrVersionConflict on a lost race.
	UpdateTokenState(ctx context.Context, tokenID string, expectedVersion uint64, mutate func(*models.Token) error) (*models.Token, error)
	RemoveToken(ctx context.Context, tokenID string) error
	GetTokenPositions(ctx context.Context, processInstanceID string) ([]*models.Token, error)
	GetActiveTokens(ctx context.Context, processInstanceID string) ([]*models.Token, error)
	ClearScopeTokens(ctx context.Context, processInstanceID, scopeID string) error

	// Variables (process-instance root scope plus nested scopes)
	SetVariable(ctx context.Context, processInstanceID, scopeID, name string, value models.Variable) error
	GetVariable(ctx context.Context, processInstanceID, scopeID, name string) (models.Variable, bool, error)
	GetVariables(ctx context.Context, processInstanceID, scopeID string) (map[string]models.Variable, error)

	// Timers
	SaveTimer(ctx context.Context, timer *models.Timer) error
	GetTimer(ctx context.Context, timerID string) (*models.Timer, error)
	GetDueTimers(ctx context.Context, before time.Time) ([]*models.Timer, error)
	GetTimersByActivity(ctx context.Context, processInstanceID, elementID string) ([]*models.Timer, error)
	DeleteTimer(ctx context.Context, timerID string) error

	// Message / signal subscriptions
	CreateMessageSubscription(ctx context.Context, sub *models.ProcessMessageSubscription) error
	FindMessageSubscriptions(ctx context.Context, messageName, correlationKey string) ([]*models.ProcessMessageSubscription, error)
	DeleteMessageSubscription(ctx context.Context, id string) error
	CreateSignalSubscription(ctx context.Context, sub *models.SignalSubscription) error
	FindSignalSubscriptions(ctx context.Context, signalName string) ([]*models.SignalSubscription, error)
	DeleteSignalSubscription(ctx context.Context, id string) error

	// Compensation handler registry, keyed per spec on
	// (processInstanceID, activityID) plus an ordered per-instance list.
	RegisterCompensationHandler(ctx context.Context, handler *models.CompensationHandler) error
	GetCompensationHandler(ctx context.Context, processInstanceID, activityID string) (*models.CompensationHandler, error)
	ListCompensationHandlers(ctx context.Context, processInstanceID string) ([]*models.CompensationHandler, error)
	ClearCompensationHandlers(ctx context.Context, processInstanceID string) error

	// Saga orchestration snapshots, one per running/finished saga.
	SaveSaga(ctx context.Context, saga *models.Saga) error
	GetSaga(ctx context.Context, processInstanceID, sagaID string) (*models.Saga, error)

	// Gateway join bookkeeping (parallel / inclusive gateway sync).
	GetGatewaySyncState(ctx context.Context, gatewayID, processInstanceID string) (*models.GatewaySyncState, error)
	SaveGatewaySyncState(ctx context.Context, state *models.GatewaySyncState) error
	DeleteGatewaySyncState(ctx context.Context, gatewayID, processInstanceID string) error
}

// New constructs a Storage backend per cfg.Storage.Type (badger or redis).
func New(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "redis":
		return NewRedisStateManager(cfg)
	case "badger", "":
		return NewBadgerStateManager(cfg)
	default:
		return nil, fmt.Errorf("unknown storage.type %q", cfg.Storage.Type)
	}
}
