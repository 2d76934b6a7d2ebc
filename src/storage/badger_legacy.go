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

	badger "github.com/dgraph-io/badger/v4"

	"github.com/atombpmn/flowrt/src/core/models"
)

// --- Tokens (legacy single-writer API) ---

func (b *BadgerStateManager) SaveToken(token *models.Token) error {
	if token.Version == 0 {
		token.Version = 1
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.saveJSON(txn, tokenKey(token.TokenID), token); err != nil {
			return err
		}
		return b.saveJSON(txn, tokenByInstanceKey(token.ProcessInstanceID, token.TokenID), token)
	})
}

func (b *BadgerStateManager) LoadToken(tokenID string) (*models.Token, error) {
	return b.GetToken(context.Background(), tokenID)
}

func (b *BadgerStateManager) UpdateToken(token *models.Token) error {
	token.Version++
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.saveJSON(txn, tokenKey(token.TokenID), token); err != nil {
			return err
		}
		return b.saveJSON(txn, tokenByInstanceKey(token.ProcessInstanceID, token.TokenID), token)
	})
}

func (b *BadgerStateManager) DeleteToken(tokenID string) error {
	return b.RemoveToken(context.Background(), tokenID)
}

func (b *BadgerStateManager) LoadTokensByProcessInstance(processInstanceID string) ([]*models.Token, error) {
	return b.GetTokenPositions(context.Background(), processInstanceID)
}

func (b *BadgerStateManager) LoadActiveTokens() ([]*models.Token, error) {
	all, err := b.LoadAllTokens()
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

func (b *BadgerStateManager) LoadTokensByState(state models.TokenState) ([]*models.Token, error) {
	all, err := b.LoadAllTokens()
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

func (b *BadgerStateManager) LoadAllTokens() ([]*models.Token, error) {
	var tokens []*models.Token
	err := b.scanPrefix(tokenKey(""), func(_, value []byte) error {
		var t models.Token
		if err := json.Unmarshal(value, &t); err != nil {
			return err
		}
		tokens = append(tokens, &t)
		return nil
	})
	return tokens, err
}

// --- Timers (legacy single-writer API) ---

func (b *BadgerStateManager) LoadTimer(timerID string) (*models.Timer, error) {
	return b.GetTimer(context.Background(), timerID)
}

func (b *BadgerStateManager) LoadAllTimers() ([]*models.Timer, error) {
	var timers []*models.Timer
	err := b.scanPrefix(timerKey(""), func(_, value []byte) error {
		var t models.Timer
		if err := json.Unmarshal(value, &t); err != nil {
			return err
		}
		timers = append(timers, &t)
		return nil
	})
	return timers, err
}

func (b *BadgerStateManager) UpdateTimer(timer *models.Timer) error {
	return b.SaveTimer(context.Background(), timer)
}

// --- Process instances ---

func (b *BadgerStateManager) SaveProcessInstance(instance *models.ProcessInstance) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, processInstanceKey(instance.InstanceID), instance)
	})
}

func (b *BadgerStateManager) LoadProcessInstance(instanceID string) (*models.ProcessInstance, error) {
	var inst models.ProcessInstance
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, processInstanceKey(instanceID), &inst)
	})
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (b *BadgerStateManager) UpdateProcessInstance(instance *models.ProcessInstance) error {
	return b.SaveProcessInstance(instance)
}

func (b *BadgerStateManager) LoadAllProcessInstances() ([]*models.ProcessInstance, error) {
	var instances []*models.ProcessInstance
	err := b.scanPrefix(processInstanceKey(""), func(_, value []byte) error {
		var inst models.ProcessInstance
		if err := json.Unmarshal(value, &inst); err != nil {
			return err
		}
		instances = append(instances, &inst)
		return nil
	})
	return instances, err
}

func (b *BadgerStateManager) LoadProcessInstancesByProcessKey(processKey string) ([]*models.ProcessInstance, error) {
	all, err := b.LoadAllProcessInstances()
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

func (b *BadgerStateManager) LoadBPMNProcess(processKey string) ([]byte, error) {
	var raw json.RawMessage
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, bpmnProcessKey(processKey), &raw)
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *BadgerStateManager) LoadBPMNProcessByProcessID(processID string, version int) ([]byte, string, error) {
	key := bpmnProcessKey(processID)
	data, err := b.LoadBPMNProcess(processID)
	return data, key, err
}

// --- Message buffering ---

func (b *BadgerStateManager) SaveBufferedMessage(ctx context.Context, message *models.BufferedMessage) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, bufferedMessageKey(message.ID), message)
	})
}

func (b *BadgerStateManager) GetBufferedMessage(ctx context.Context, messageID string) (*models.BufferedMessage, error) {
	var msg models.BufferedMessage
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, bufferedMessageKey(messageID), &msg)
	})
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (b *BadgerStateManager) DeleteBufferedMessage(ctx context.Context, messageID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(bufferedMessageKey(messageID)))
	})
}

func (b *BadgerStateManager) ListBufferedMessages(ctx context.Context, tenantID string, limit, offset int) ([]*models.BufferedMessage, error) {
	var all []*models.BufferedMessage
	err := b.scanPrefix(bufferedMessageKey(""), func(_, value []byte) error {
		var msg models.BufferedMessage
		if err := json.Unmarshal(value, &msg); err != nil {
			return err
		}
		if tenantID != "" && msg.TenantID != tenantID {
			return nil
		}
		all = append(all, &msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginateBufferedMessages(all, limit, offset), nil
}

func paginateBufferedMessages(all []*models.BufferedMessage, limit, offset int) []*models.BufferedMessage {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*models.BufferedMessage{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

// --- Message correlation results ---

func (b *BadgerStateManager) SaveMessageCorrelationResult(ctx context.Context, result *models.MessageCorrelationResult) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, correlationResultKey(result.ID), result)
	})
}

func (b *BadgerStateManager) ListMessageCorrelationResults(ctx context.Context, tenantID, messageName, correlationKey string, limit, offset int) ([]*models.MessageCorrelationResult, error) {
	var all []*models.MessageCorrelationResult
	err := b.scanPrefix(correlationResultKey(""), func(_, value []byte) error {
		var r models.MessageCorrelationResult
		if err := json.Unmarshal(value, &r); err != nil {
			return err
		}
		if tenantID != "" && r.TenantID != tenantID {
			return nil
		}
		if messageName != "" && r.MessageName != messageName {
			return nil
		}
		if correlationKey != "" && r.CorrelationKey != correlationKey {
			return nil
		}
		all = append(all, &r)
		return nil
	})
	if err != nil {
		return nil, err
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

func (b *BadgerStateManager) DeleteMessageCorrelationResult(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(correlationResultKey(id)))
	})
}

// --- Message-start-event subscriptions (legacy tenant/process/event lookup) ---

func (b *BadgerStateManager) SaveProcessMessageSubscription(ctx context.Context, sub *models.ProcessMessageSubscription) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, procMsgSubLegacyKey(sub.ID), sub)
	})
}

func (b *BadgerStateManager) GetProcessMessageSubscription(ctx context.Context, tenantID, processKey, startEventID string) (*models.ProcessMessageSubscription, error) {
	var found *models.ProcessMessageSubscription
	err := b.scanPrefix(procMsgSubLegacyPrefix(), func(_, value []byte) error {
		var sub models.ProcessMessageSubscription
		if err := json.Unmarshal(value, &sub); err != nil {
			return err
		}
		if sub.TenantID == tenantID && sub.ProcessDefinitionKey == processKey && sub.StartEventID == startEventID && sub.IsActive {
			found = &sub
		}
		return nil
	})
	return found, err
}

func (b *BadgerStateManager) ListProcessMessageSubscriptions(ctx context.Context, tenantID string, limit, offset int) ([]*models.ProcessMessageSubscription, error) {
	var all []*models.ProcessMessageSubscription
	err := b.scanPrefix(procMsgSubLegacyPrefix(), func(_, value []byte) error {
		var sub models.ProcessMessageSubscription
		if err := json.Unmarshal(value, &sub); err != nil {
			return err
		}
		if tenantID != "" && sub.TenantID != tenantID {
			return nil
		}
		all = append(all, &sub)
		return nil
	})
	if err != nil {
		return nil, err
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

func (b *BadgerStateManager) DeleteProcessMessageSubscription(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(procMsgSubLegacyKey(id)))
	})
}

// --- Incidents ---

func (b *BadgerStateManager) SaveIncident(incident interface{}) error {
	var id string
	if m, ok := incident.(map[string]interface{}); ok {
		id, _ = m["id"].(string)
	} else {
		data, err := json.Marshal(incident)
		if err != nil {
			return err
		}
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		id, _ = m["id"].(string)
	}
	if id == "" {
		return ErrNotFound
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, incidentKey(id), incident)
	})
}

func (b *BadgerStateManager) GetIncident(incidentID string) (interface{}, error) {
	var raw json.RawMessage
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, incidentKey(incidentID), &raw)
	})
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func (b *BadgerStateManager) ListIncidents(filter interface{}) ([]interface{}, int, error) {
	f := decodeIncidentFilter(filter)
	var matched []interface{}
	err := b.scanPrefix(incidentKey(""), func(_, value []byte) error {
		var record map[string]interface{}
		if err := json.Unmarshal(value, &record); err != nil {
			return err
		}
		if matchesIncidentFilter(f, record) {
			matched = append(matched, record)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	total := len(matched)
	return paginate(matched, f.Limit, f.Offset), total, nil
}
