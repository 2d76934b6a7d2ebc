/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atombpmn/flowrt/src/core/config"
	"github.com/atombpmn/flowrt/src/core/models"
)

// RedisStateManager backs the StateManager contract with Redis, for
// multi-node deployments where BadgerStateManager's single-process
// embedded store will not do. Token CAS uses WATCH/MULTI/EXEC: the
// token key is watched, the transaction aborts with redis.TxFailedErr if
// another client wrote it between the watch and the exec, which we
// surface uniformly as ErrVersionConflict.
type RedisStateManager struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisStateManager builds (but does not yet connect) a Redis-backed
// state manager per cfg.Redis.
func NewRedisStateManager(cfg *config.Config) (*RedisStateManager, error) {
	return &RedisStateManager{cfg: cfg}, nil
}

func (r *RedisStateManager) Init(ctx context.Context) error {
	opts, err := redis.ParseURL(r.cfg.Redis.URL)
	if err != nil {
		return err
	}
	opts.PoolSize = r.cfg.Redis.PoolSize
	r.client = redis.NewClient(opts)
	return r.client.Ping(ctx).Err()
}

func (r *RedisStateManager) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisStateManager) IsReady() bool { return r.client != nil }

func (r *RedisStateManager) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, 0).Err()
}

func (r *RedisStateManager) getJSON(ctx context.Context, key string, v interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// --- Tokens ---

func (r *RedisStateManager) AddToken(ctx context.Context, token *models.Token) error {
	token.Version = 1
	if err := r.setJSON(ctx, tokenKey(token.TokenID), token); err != nil {
		return err
	}
	return r.client.SAdd(ctx, tokensByInstancePrefix(token.ProcessInstanceID), token.TokenID).Err()
}

func (r *RedisStateManager) GetToken(ctx context.Context, tokenID string) (*models.Token, error) {
	var t models.Token
	if err := r.getJSON(ctx, tokenKey(tokenID), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RedisStateManager) UpdateTokenState(ctx context.Context, tokenID string, expectedVersion uint64, mutate func(*models.Token) error) (*models.Token, error) {
	key := tokenKey(tokenID)
	var result models.Token

	txf := func(tx *redis.Tx) error {
		var current models.Token
		if err := r.getJSON(ctx, key, &current); err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrVersionConflict
		}
		if err := mutate(&current); err != nil {
			return err
		}
		current.Version++
		data, err := json.Marshal(&current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = current
		return nil
	}

	err := r.client.Watch(ctx, txf, key)
	if err == redis.TxFailedErr {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *RedisStateManager) RemoveToken(ctx context.Context, tokenID string) error {
	tok, err := r.GetToken(ctx, tokenID)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, tokenKey(tokenID))
	pipe.SRem(ctx, tokensByInstancePrefix(tok.ProcessInstanceID), tokenID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStateManager) GetTokenPositions(ctx context.Context, processInstanceID string) ([]*models.Token, error) {
	ids, err := r.client.SMembers(ctx, tokensByInstancePrefix(processInstanceID)).Result()
	if err != nil {
		return nil, err
	}
	tokens := make([]*models.Token, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetToken(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (r *RedisStateManager) GetActiveTokens(ctx context.Context, processInstanceID string) ([]*models.Token, error) {
	all, err := r.GetTokenPositions(ctx, processInstanceID)
	if err != nil {
		return nil, err
	}
	active := make([]*models.Token, 0, len(all))
	for _, t := range all {
		if t.IsActive() || t.IsWaiting() {
			active = append(active, t)
		}
	}
	return active, nil
}

func (r *RedisStateManager) ClearScopeTokens(ctx context.Context, processInstanceID, scopeID string) error {
	tokens, err := r.GetTokenPositions(ctx, processInstanceID)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		if t.ScopeID != scopeID {
			continue
		}
		if err := r.RemoveToken(ctx, t.TokenID); err != nil {
			return err
		}
	}
	return nil
}

// --- Variables ---

func (r *RedisStateManager) SetVariable(ctx context.Context, processInstanceID, scopeID, name string, value models.Variable) error {
	if err := r.setJSON(ctx, variableKey(processInstanceID, scopeID, name), &value); err != nil {
		return err
	}
	return r.client.SAdd(ctx, variablesPrefix(processInstanceID, scopeID), name).Err()
}

func (r *RedisStateManager) GetVariable(ctx context.Context, processInstanceID, scopeID, name string) (models.Variable, bool, error) {
	var v models.Variable
	err := r.getJSON(ctx, variableKey(processInstanceID, scopeID, name), &v)
	if err == ErrNotFound {
		return models.Variable{}, false, nil
	}
	if err != nil {
		return models.Variable{}, false, err
	}
	return v, true, nil
}

func (r *RedisStateManager) GetVariables(ctx context.Context, processInstanceID, scopeID string) (map[string]models.Variable, error) {
	names, err := r.client.SMembers(ctx, variablesPrefix(processInstanceID, scopeID)).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[string]models.Variable, len(names))
	for _, name := range names {
		v, ok, err := r.GetVariable(ctx, processInstanceID, scopeID, name)
		if err != nil {
			return nil, err
		}
		if ok {
			result[name] = v
		}
	}
	return result, nil
}

// --- Timers ---

func (r *RedisStateManager) SaveTimer(ctx context.Context, timer *models.Timer) error {
	if err := r.setJSON(ctx, timerKey(timer.ID), timer); err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, "timer:index", timer.ID)
	pipe.Set(ctx, timerActivityIndexKey(timer.ProcessInstanceID, timer.ElementID, timer.ID), timer.ID, 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStateManager) GetTimer(ctx context.Context, timerID string) (*models.Timer, error) {
	var t models.Timer
	if err := r.getJSON(ctx, timerKey(timerID), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RedisStateManager) GetDueTimers(ctx context.Context, before time.Time) ([]*models.Timer, error) {
	ids, err := r.client.SMembers(ctx, "timer:index").Result()
	if err != nil {
		return nil, err
	}
	var due []*models.Timer
	for _, id := range ids {
		t, err := r.GetTimer(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if t.IsDue(before) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (r *RedisStateManager) GetTimersByActivity(ctx context.Context, processInstanceID, elementID string) ([]*models.Timer, error) {
	keys, err := r.client.Keys(ctx, timerActivityIndexPrefix(processInstanceID)+"*").Result()
	if err != nil {
		return nil, err
	}
	var timers []*models.Timer
	for _, k := range keys {
		id, err := r.client.Get(ctx, k).Result()
		if err != nil {
			continue
		}
		t, err := r.GetTimer(ctx, id)
		if err != nil {
			continue
		}
		if t.ElementID == elementID {
			timers = append(timers, t)
		}
	}
	return timers, nil
}

func (r *RedisStateManager) DeleteTimer(ctx context.Context, timerID string) error {
	t, err := r.GetTimer(ctx, timerID)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, timerKey(timerID))
	pipe.SRem(ctx, "timer:index", timerID)
	pipe.Del(ctx, timerActivityIndexKey(t.ProcessInstanceID, t.ElementID, timerID))
	_, err = pipe.Exec(ctx)
	return err
}

// --- Message / signal subscriptions ---

func (r *RedisStateManager) CreateMessageSubscription(ctx context.Context, sub *models.ProcessMessageSubscription) error {
	if err := r.setJSON(ctx, messageSubKey(sub.ID), sub); err != nil {
		return err
	}
	return r.client.SAdd(ctx, messageSubByNamePrefix(sub.MessageName, sub.CorrelationKey), sub.ID).Err()
}

func (r *RedisStateManager) FindMessageSubscriptions(ctx context.Context, messageName, correlationKey string) ([]*models.ProcessMessageSubscription, error) {
	ids, err := r.client.SMembers(ctx, messageSubByNamePrefix(messageName, correlationKey)).Result()
	if err != nil {
		return nil, err
	}
	var subs []*models.ProcessMessageSubscription
	for _, id := range ids {
		var sub models.ProcessMessageSubscription
		if err := r.getJSON(ctx, messageSubKey(id), &sub); err != nil {
			continue
		}
		if sub.IsActive {
			subs = append(subs, &sub)
		}
	}
	return subs, nil
}

func (r *RedisStateManager) DeleteMessageSubscription(ctx context.Context, id string) error {
	var sub models.ProcessMessageSubscription
	if err := r.getJSON(ctx, messageSubKey(id), &sub); err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, messageSubKey(id))
	pipe.SRem(ctx, messageSubByNamePrefix(sub.MessageName, sub.CorrelationKey), id)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStateManager) CreateSignalSubscription(ctx context.Context, sub *models.SignalSubscription) error {
	if err := r.setJSON(ctx, signalSubKey(sub.ID), sub); err != nil {
		return err
	}
	return r.client.SAdd(ctx, signalSubByNamePrefix(sub.SignalName), sub.ID).Err()
}

func (r *RedisStateManager) FindSignalSubscriptions(ctx context.Context, signalName string) ([]*models.SignalSubscription, error) {
	ids, err := r.client.SMembers(ctx, signalSubByNamePrefix(signalName)).Result()
	if err != nil {
		return nil, err
	}
	var subs []*models.SignalSubscription
	for _, id := range ids {
		var sub models.SignalSubscription
		if err := r.getJSON(ctx, signalSubKey(id), &sub); err != nil {
			continue
		}
		subs = append(subs, &sub)
	}
	return subs, nil
}

func (r *RedisStateManager) DeleteSignalSubscription(ctx context.Context, id string) error {
	var sub models.SignalSubscription
	if err := r.getJSON(ctx, signalSubKey(id), &sub); err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, signalSubKey(id))
	pipe.SRem(ctx, signalSubByNamePrefix(sub.SignalName), id)
	_, err := pipe.Exec(ctx)
	return err
}

// --- Compensation handlers ---

func (r *RedisStateManager) RegisterCompensationHandler(ctx context.Context, handler *models.CompensationHandler) error {
	if err := r.setJSON(ctx, compensationKey(handler.ProcessInstanceID, handler.ActivityID), handler); err != nil {
		return err
	}
	data, err := json.Marshal(handler)
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, compensationAllKey(handler.ProcessInstanceID), data).Err()
}

func (r *RedisStateManager) GetCompensationHandler(ctx context.Context, processInstanceID, activityID string) (*models.CompensationHandler, error) {
	var h models.CompensationHandler
	if err := r.getJSON(ctx, compensationKey(processInstanceID, activityID), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *RedisStateManager) ListCompensationHandlers(ctx context.Context, processInstanceID string) ([]*models.CompensationHandler, error) {
	entries, err := r.client.LRange(ctx, compensationAllKey(processInstanceID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	handlers := make([]*models.CompensationHandler, 0, len(entries))
	for _, e := range entries {
		var h models.CompensationHandler
		if err := json.Unmarshal([]byte(e), &h); err != nil {
			return nil, err
		}
		handlers = append(handlers, &h)
	}
	return handlers, nil
}

func (r *RedisStateManager) ClearCompensationHandlers(ctx context.Context, processInstanceID string) error {
	handlers, err := r.ListCompensationHandlers(ctx, processInstanceID)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	for _, h := range handlers {
		pipe.Del(ctx, compensationKey(processInstanceID, h.ActivityID))
	}
	pipe.Del(ctx, compensationAllKey(processInstanceID))
	_, err = pipe.Exec(ctx)
	return err
}

// --- Saga orchestration ---

func (r *RedisStateManager) SaveSaga(ctx context.Context, saga *models.Saga) error {
	return r.setJSON(ctx, sagaKey(saga.ProcessInstanceID, saga.SagaID), saga)
}

func (r *RedisStateManager) GetSaga(ctx context.Context, processInstanceID, sagaID string) (*models.Saga, error) {
	var s models.Saga
	if err := r.getJSON(ctx, sagaKey(processInstanceID, sagaID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// --- Gateway join state ---

func (r *RedisStateManager) GetGatewaySyncState(ctx context.Context, gatewayID, processInstanceID string) (*models.GatewaySyncState, error) {
	var s models.GatewaySyncState
	if err := r.getJSON(ctx, gatewaySyncKey(gatewayID, processInstanceID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStateManager) SaveGatewaySyncState(ctx context.Context, state *models.GatewaySyncState) error {
	return r.setJSON(ctx, gatewaySyncKey(state.GatewayID, state.ProcessInstanceID), state)
}

func (r *RedisStateManager) DeleteGatewaySyncState(ctx context.Context, gatewayID, processInstanceID string) error {
	return r.client.Del(ctx, gatewaySyncKey(gatewayID, processInstanceID)).Err()
}
