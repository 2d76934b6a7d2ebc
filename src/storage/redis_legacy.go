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

	"github.com/redis/go-redis/v9"

	"github.com/atombpmn/flowrt/src/core/models"
)

const (
	processInstanceIndexKey = "process_instance:index"
	bpmnProcessIndexKey     = "bpmn_process:index"
	bufferedMessageIndexKey = "buffered_message:index"
	correlationIndexKey     = "correlation_result:index"
	procMsgSubIndexKey      = "proc_msg_sub_legacy:index"
	incidentIndexKey        = "incident:index"
)

// --- Tokens (legacy single-writer API) ---

func (r *RedisStateManager) SaveToken(token *models.Token) error {
	ctx := context.Background()
	if token.Version == 0 {
		token.Version = 1
	}
	if err := r.setJSON(ctx, tokenKey(token.TokenID), token); err != nil {
		return err
	}
	return r.client.SAdd(ctx, tokensByInstancePrefix(token.ProcessInstanceID), token.TokenID).Err()
}

func (r *RedisStateManager) LoadToken(tokenID string) (*models.Token, error) {
	return r.GetToken(context.Background(), tokenID)
}

func (r *RedisStateManager) UpdateToken(token *models.Token) error {
	token.Version++
	return r.SaveToken(token)
}

func (r *RedisStateManager) DeleteToken(tokenID string) error {
	return r.RemoveToken(context.Background(), tokenID)
}

func (r *RedisStateManager) LoadTokensByProcessInstance(processInstanceID string) ([]*models.Token, error) {
	return r.GetTokenPositions(context.Background(), processInstanceID)
}

func (r *RedisStateManager) LoadActiveTokens() ([]*models.Token, error) {
	all, err := r.LoadAllTokens()
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

func (r *RedisStateManager) LoadTokensByState(state models.TokenState) ([]*models.Token, error) {
	all, err := r.LoadAllTokens()
	if err != nil {
		return nil, err
	}
	matched := make([]*models.Token, 0, len(all))
	for _, t := range all {
		if t.State == state {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (r *RedisStateManager) LoadAllTokens() ([]*models.Token, error) {
	ctx := context.Background()
	keys, err := r.client.Keys(ctx, "token:*").Result()
	if err != nil {
		return nil, err
	}
	var tokens []*models.Token
	for _, k := range keys {
		var t models.Token
		if err := r.getJSON(ctx, k, &t); err != nil {
			continue
		}
		tokens = append(tokens, &t)
	}
	return tokens, nil
}

// --- Timers (legacy single-writer API) ---

func (r *RedisStateManager) LoadTimer(timerID string) (*models.Timer, error) {
	return r.GetTimer(context.Background(), timerID)
}

func (r *RedisStateManager) LoadAllTimers() ([]*models.Timer, error) {
	ctx := context.Background()
	ids, err := r.client.SMembers(ctx, "timer:index").Result()
	if err != nil {
		return nil, err
	}
	var timers []*models.Timer
	for _, id := range ids {
		t, err := r.GetTimer(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}
	return timers, nil
}

func (r *RedisStateManager) UpdateTimer(timer *models.Timer) error {
	return r.SaveTimer(context.Background(), timer)
}

// --- Process instances ---

func (r *RedisStateManager) SaveProcessInstance(instance *models.ProcessInstance) error {
	ctx := context.Background()
	if err := r.setJSON(ctx, processInstanceKey(instance.InstanceID), instance); err != nil {
		return err
	}
	return r.client.SAdd(ctx, processInstanceIndexKey, instance.InstanceID).Err()
}

func (r *RedisStateManager) LoadProcessInstance(instanceID string) (*models.ProcessInstance, error) {
	var inst models.ProcessInstance
	if err := r.getJSON(context.Background(), processInstanceKey(instanceID), &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *RedisStateManager) UpdateProcessInstance(instance *models.ProcessInstance) error {
	return r.SaveProcessInstance(instance)
}

func (r *RedisStateManager) LoadAllProcessInstances() ([]*models.ProcessInstance, error) {
	ctx := context.Background()
	ids, err := r.client.SMembers(ctx, processInstanceIndexKey).Result()
	if err != nil {
		return nil, err
	}
	var instances []*models.ProcessInstance
	for _, id := range ids {
		var inst models.ProcessInstance
		if err := r.getJSON(ctx, processInstanceKey(id), &inst); err != nil {
			continue
		}
		instances = append(instances, &inst)
	}
	return instances, nil
}

func (r *RedisStateManager) LoadProcessInstancesByProcessKey(processKey string) ([]*models.ProcessInstance, error) {
	all, err := r.LoadAllProcessInstances()
	if err != nil {
		return nil, err
	}
	matched := make([]*models.ProcessInstance, 0, len(all))
	for _, inst := range all {
		if inst.ProcessKey == processKey {
			matched = append(matched, inst)
		}
	}
	return matched, nil
}

// --- Deployed BPMN process definitions ---

func (r *RedisStateManager) LoadBPMNProcess(processKey string) ([]byte, error) {
	data, err := r.client.Get(context.Background(), bpmnProcessKey(processKey)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *RedisStateManager) LoadBPMNProcessByProcessID(processID string, version int) ([]byte, string, error) {
	key := bpmnProcessKey(processID)
	data, err := r.LoadBPMNProcess(processID)
	return data, key, err
}

// --- Message buffering ---

func (r *RedisStateManager) SaveBufferedMessage(ctx context.Context, message *models.BufferedMessage) error {
	if err := r.setJSON(ctx, bufferedMessageKey(message.ID), message); err != nil {
		return err
	}
	return r.client.SAdd(ctx, bufferedMessageIndexKey, message.ID).Err()
}

func (r *RedisStateManager) GetBufferedMessage(ctx context.Context, messageID string) (*models.BufferedMessage, error) {
	var msg models.BufferedMessage
	err := r.getJSON(ctx, bufferedMessageKey(messageID), &msg)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *RedisStateManager) DeleteBufferedMessage(ctx context.Context, messageID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, bufferedMessageKey(messageID))
	pipe.SRem(ctx, bufferedMessageIndexKey, messageID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStateManager) ListBufferedMessages(ctx context.Context, tenantID string, limit, offset int) ([]*models.BufferedMessage, error) {
	ids, err := r.client.SMembers(ctx, bufferedMessageIndexKey).Result()
	if err != nil {
		return nil, err
	}
	var all []*models.BufferedMessage
	for _, id := range ids {
		var msg models.BufferedMessage
		if err := r.getJSON(ctx, bufferedMessageKey(id), &msg); err != nil {
			continue
		}
		if tenantID != "" && msg.TenantID != tenantID {
			continue
		}
		all = append(all, &msg)
	}
	return paginateBufferedMessages(all, limit, offset), nil
}

// --- Message correlation results ---

func (r *RedisStateManager) SaveMessageCorrelationResult(ctx context.Context, result *models.MessageCorrelationResult) error {
	if err := r.setJSON(ctx, correlationResultKey(result.ID), result); err != nil {
		return err
	}
	return r.client.SAdd(ctx, correlationIndexKey, result.ID).Err()
}

func (r *RedisStateManager) ListMessageCorrelationResults(ctx context.Context, tenantID, messageName, correlationKey string, limit, offset int) ([]*models.MessageCorrelationResult, error) {
	ids, err := r.client.SMembers(ctx, correlationIndexKey).Result()
	if err != nil {
		return nil, err
	}
	var all []*models.MessageCorrelationResult
	for _, id := range ids {
		var res models.MessageCorrelationResult
		if err := r.getJSON(ctx, correlationResultKey(id), &res); err != nil {
			continue
		}
		if tenantID != "" && res.TenantID != tenantID {
			continue
		}
		if messageName != "" && res.MessageName != messageName {
			continue
		}
		if correlationKey != "" && res.CorrelationKey != correlationKey {
			continue
		}
		all = append(all, &res)
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*models.MessageCorrelationResult{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *RedisStateManager) DeleteMessageCorrelationResult(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, correlationResultKey(id))
	pipe.SRem(ctx, correlationIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// --- Message-start-event subscriptions (legacy tenant/process/event lookup) ---

func (r *RedisStateManager) SaveProcessMessageSubscription(ctx context.Context, sub *models.ProcessMessageSubscription) error {
	if err := r.setJSON(ctx, procMsgSubLegacyKey(sub.ID), sub); err != nil {
		return err
	}
	return r.client.SAdd(ctx, procMsgSubIndexKey, sub.ID).Err()
}

func (r *RedisStateManager) GetProcessMessageSubscription(ctx context.Context, tenantID, processKey, startEventID string) (*models.ProcessMessageSubscription, error) {
	ids, err := r.client.SMembers(ctx, procMsgSubIndexKey).Result()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		var sub models.ProcessMessageSubscription
		if err := r.getJSON(ctx, procMsgSubLegacyKey(id), &sub); err != nil {
			continue
		}
		if sub.TenantID == tenantID && sub.ProcessDefinitionKey == processKey && sub.StartEventID == startEventID && sub.IsActive {
			return &sub, nil
		}
	}
	return nil, nil
}

func (r *RedisStateManager) ListProcessMessageSubscriptions(ctx context.Context, tenantID string, limit, offset int) ([]*models.ProcessMessageSubscription, error) {
	ids, err := r.client.SMembers(ctx, procMsgSubIndexKey).Result()
	if err != nil {
		return nil, err
	}
	var all []*models.ProcessMessageSubscription
	for _, id := range ids {
		var sub models.ProcessMessageSubscription
		if err := r.getJSON(ctx, procMsgSubLegacyKey(id), &sub); err != nil {
			continue
		}
		if tenantID != "" && sub.TenantID != tenantID {
			continue
		}
		all = append(all, &sub)
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*models.ProcessMessageSubscription{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *RedisStateManager) DeleteProcessMessageSubscription(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, procMsgSubLegacyKey(id))
	pipe.SRem(ctx, procMsgSubIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// --- Incidents ---

func (r *RedisStateManager) SaveIncident(incident interface{}) error {
	ctx := context.Background()
	data, err := json.Marshal(incident)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	id, _ := m["id"].(string)
	if id == "" {
		return ErrNotFound
	}
	if err := r.client.Set(ctx, incidentKey(id), data, 0).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, incidentIndexKey, id).Err()
}

func (r *RedisStateManager) GetIncident(incidentID string) (interface{}, error) {
	ctx := context.Background()
	data, err := r.client.Get(ctx, incidentKey(incidentID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func (r *RedisStateManager) ListIncidents(filter interface{}) ([]interface{}, int, error) {
	ctx := context.Background()
	f := decodeIncidentFilter(filter)
	ids, err := r.client.SMembers(ctx, incidentIndexKey).Result()
	if err != nil {
		return nil, 0, err
	}
	var matched []interface{}
	for _, id := range ids {
		data, err := r.client.Get(ctx, incidentKey(id)).Bytes()
		if err != nil {
			continue
		}
		var record map[string]interface{}
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		if matchesIncidentFilter(f, record) {
			matched = append(matched, record)
		}
	}
	total := len(matched)
	return paginate(matched, f.Limit, f.Offset), total, nil
}
