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
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/atombpmn/flowrt/src/core/config"
	"github.com/atombpmn/flowrt/src/core/models"
)

// BadgerStateManager backs the StateManager contract with an embedded
// BadgerDB. Compare-and-set writes on tokens run inside a single
// badger.Txn: the token is re-read, its Version compared against the
// caller's expectation, and the mutated token written back in the same
// transaction. Badger itself detects write-write conflicts between
// concurrent transactions touching the same keys (ErrConflict), which we
// also surface as ErrVersionConflict — so a lost race is caught whether
// it is the application-level version check or Badger's own SSI
// detection that notices it first.
type BadgerStateManager struct {
	db     *badger.DB
	cfg    *config.Config
	ready  bool
}

// NewBadgerStateManager opens (but does not yet start) a Badger-backed
// state manager rooted at cfg.Storage.Directory.
func NewBadgerStateManager(cfg *config.Config) (*BadgerStateManager, error) {
	return &BadgerStateManager{cfg: cfg}, nil
}

func (b *BadgerStateManager) Init(ctx context.Context) error {
	opts := badger.DefaultOptions(b.cfg.Storage.Directory)
	opts = opts.WithLogger(nil)

	if perf := b.cfg.Storage.Options.Performance; perf != nil {
		if perf.MemTableSize != nil {
			opts = opts.WithMemTableSize(*perf.MemTableSize)
		}
		if perf.NumMemtables != nil {
			opts = opts.WithNumMemtables(*perf.NumMemtables)
		}
		if perf.NumCompactors != nil {
			opts = opts.WithNumCompactors(*perf.NumCompactors)
		}
		if perf.DetectConflicts != nil {
			opts = opts.WithDetectConflicts(*perf.DetectConflicts)
		}
	}
	if sync := b.cfg.Storage.Options.SyncWrites; sync != nil {
		opts = opts.WithSyncWrites(*sync)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger at %s: %w", b.cfg.Storage.Directory, err)
	}
	b.db = db
	b.ready = true
	return nil
}

func (b *BadgerStateManager) Close() error {
	b.ready = false
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *BadgerStateManager) IsReady() bool { return b.ready && b.db != nil }

func (b *BadgerStateManager) saveJSON(txn *badger.Txn, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func (b *BadgerStateManager) loadJSON(txn *badger.Txn, key string, v interface{}) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func (b *BadgerStateManager) scanPrefix(prefix string, fn func(key, value []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return fn(item.KeyCopy(nil), append([]byte{}, val...))
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- Tokens ---

func (b *BadgerStateManager) AddToken(ctx context.Context, token *models.Token) error {
	token.Version = 1
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.saveJSON(txn, tokenKey(token.TokenID), token); err != nil {
			return err
		}
		return b.saveJSON(txn, tokenByInstanceKey(token.ProcessInstanceID, token.TokenID), token)
	})
}

func (b *BadgerStateManager) GetToken(ctx context.Context, tokenID string) (*models.Token, error) {
	var token models.Token
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, tokenKey(tokenID), &token)
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (b *BadgerStateManager) UpdateTokenState(ctx context.Context, tokenID string, expectedVersion uint64, mutate func(*models.Token) error) (*models.Token, error) {
	var result models.Token
	err := b.db.Update(func(txn *badger.Txn) error {
		var current models.Token
		if err := b.loadJSON(txn, tokenKey(tokenID), &current); err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrVersionConflict
		}
		if err := mutate(&current); err != nil {
			return err
		}
		current.Version++
		if err := b.saveJSON(txn, tokenKey(tokenID), &current); err != nil {
			return err
		}
		if err := b.saveJSON(txn, tokenByInstanceKey(current.ProcessInstanceID, tokenID), &current); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err == badger.ErrConflict {
		err = ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *BadgerStateManager) RemoveToken(ctx context.Context, tokenID string) error {
	tok, err := b.GetToken(ctx, tokenID)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(tokenKey(tokenID))); err != nil {
			return err
		}
		return txn.Delete([]byte(tokenByInstanceKey(tok.ProcessInstanceID, tokenID)))
	})
}

func (b *BadgerStateManager) GetTokenPositions(ctx context.Context, processInstanceID string) ([]*models.Token, error) {
	var tokens []*models.Token
	err := b.scanPrefix(tokensByInstancePrefix(processInstanceID), func(_, value []byte) error {
		var t models.Token
		if err := json.Unmarshal(value, &t); err != nil {
			return err
		}
		tokens = append(tokens, &t)
		return nil
	})
	return tokens, err
}

func (b *BadgerStateManager) GetActiveTokens(ctx context.Context, processInstanceID string) ([]*models.Token, error) {
	all, err := b.GetTokenPositions(ctx, processInstanceID)
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

func (b *BadgerStateManager) ClearScopeTokens(ctx context.Context, processInstanceID, scopeID string) error {
	tokens, err := b.GetTokenPositions(ctx, processInstanceID)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		for _, t := range tokens {
			if t.ScopeID != scopeID {
				continue
			}
			if err := txn.Delete([]byte(tokenKey(t.TokenID))); err != nil {
				return err
			}
			if err := txn.Delete([]byte(tokenByInstanceKey(processInstanceID, t.TokenID))); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- Variables ---

func (b *BadgerStateManager) SetVariable(ctx context.Context, processInstanceID, scopeID, name string, value models.Variable) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, variableKey(processInstanceID, scopeID, name), &value)
	})
}

func (b *BadgerStateManager) GetVariable(ctx context.Context, processInstanceID, scopeID, name string) (models.Variable, bool, error) {
	var v models.Variable
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, variableKey(processInstanceID, scopeID, name), &v)
	})
	if err == ErrNotFound {
		return models.Variable{}, false, nil
	}
	if err != nil {
		return models.Variable{}, false, err
	}
	return v, true, nil
}

func (b *BadgerStateManager) GetVariables(ctx context.Context, processInstanceID, scopeID string) (map[string]models.Variable, error) {
	result := make(map[string]models.Variable)
	err := b.scanPrefix(variablesPrefix(processInstanceID, scopeID), func(_, value []byte) error {
		var v models.Variable
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		result[v.Name] = v
		return nil
	})
	return result, err
}

// --- Timers ---

func (b *BadgerStateManager) SaveTimer(ctx context.Context, timer *models.Timer) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.saveJSON(txn, timerKey(timer.ID), timer); err != nil {
			return err
		}
		return txn.Set([]byte(timerActivityIndexKey(timer.ProcessInstanceID, timer.ElementID, timer.ID)), []byte(timer.ID))
	})
}

func (b *BadgerStateManager) GetTimer(ctx context.Context, timerID string) (*models.Timer, error) {
	var t models.Timer
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, timerKey(timerID), &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (b *BadgerStateManager) GetDueTimers(ctx context.Context, before time.Time) ([]*models.Timer, error) {
	var due []*models.Timer
	err := b.scanPrefix("timer:", func(_, value []byte) error {
		var t models.Timer
		if err := json.Unmarshal(value, &t); err != nil {
			return err
		}
		if t.IsDue(before) {
			due = append(due, &t)
		}
		return nil
	})
	return due, err
}

func (b *BadgerStateManager) GetTimersByActivity(ctx context.Context, processInstanceID, elementID string) ([]*models.Timer, error) {
	var timers []*models.Timer
	err := b.scanPrefix(timerActivityIndexPrefix(processInstanceID), func(key, value []byte) error {
		timerID := string(value)
		t, err := b.GetTimer(ctx, timerID)
		if err != nil {
			return err
		}
		if t.ElementID == elementID {
			timers = append(timers, t)
		}
		return nil
	})
	return timers, err
}

func (b *BadgerStateManager) DeleteTimer(ctx context.Context, timerID string) error {
	t, err := b.GetTimer(ctx, timerID)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(timerKey(timerID))); err != nil {
			return err
		}
		return txn.Delete([]byte(timerActivityIndexKey(t.ProcessInstanceID, t.ElementID, timerID)))
	})
}

// --- Message / signal subscriptions ---

func (b *BadgerStateManager) CreateMessageSubscription(ctx context.Context, sub *models.ProcessMessageSubscription) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.saveJSON(txn, messageSubKey(sub.ID), sub); err != nil {
			return err
		}
		return txn.Set([]byte(messageSubByNameKey(sub.MessageName, sub.CorrelationKey, sub.ID)), []byte(sub.ID))
	})
}

func (b *BadgerStateManager) FindMessageSubscriptions(ctx context.Context, messageName, correlationKey string) ([]*models.ProcessMessageSubscription, error) {
	var subs []*models.ProcessMessageSubscription
	err := b.scanPrefix(messageSubByNamePrefix(messageName, correlationKey), func(_, value []byte) error {
		var sub models.ProcessMessageSubscription
		if err := b.db.View(func(txn *badger.Txn) error {
			return b.loadJSON(txn, messageSubKey(string(value)), &sub)
		}); err != nil {
			return err
		}
		if sub.IsActive {
			subs = append(subs, &sub)
		}
		return nil
	})
	return subs, err
}

func (b *BadgerStateManager) DeleteMessageSubscription(ctx context.Context, id string) error {
	var sub models.ProcessMessageSubscription
	if err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, messageSubKey(id), &sub)
	}); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(messageSubKey(id))); err != nil {
			return err
		}
		return txn.Delete([]byte(messageSubByNameKey(sub.MessageName, sub.CorrelationKey, id)))
	})
}

func (b *BadgerStateManager) CreateSignalSubscription(ctx context.Context, sub *models.SignalSubscription) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.saveJSON(txn, signalSubKey(sub.ID), sub); err != nil {
			return err
		}
		return txn.Set([]byte(signalSubByNameKey(sub.SignalName, sub.ID)), []byte(sub.ID))
	})
}

func (b *BadgerStateManager) FindSignalSubscriptions(ctx context.Context, signalName string) ([]*models.SignalSubscription, error) {
	var subs []*models.SignalSubscription
	err := b.scanPrefix(signalSubByNamePrefix(signalName), func(_, value []byte) error {
		var sub models.SignalSubscription
		if err := b.db.View(func(txn *badger.Txn) error {
			return b.loadJSON(txn, signalSubKey(string(value)), &sub)
		}); err != nil {
			return err
		}
		subs = append(subs, &sub)
		return nil
	})
	return subs, err
}

func (b *BadgerStateManager) DeleteSignalSubscription(ctx context.Context, id string) error {
	var sub models.SignalSubscription
	if err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, signalSubKey(id), &sub)
	}); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(signalSubKey(id))); err != nil {
			return err
		}
		return txn.Delete([]byte(signalSubByNameKey(sub.SignalName, id)))
	})
}

// --- Compensation handlers ---

func (b *BadgerStateManager) RegisterCompensationHandler(ctx context.Context, handler *models.CompensationHandler) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.saveJSON(txn, compensationKey(handler.ProcessInstanceID, handler.ActivityID), handler); err != nil {
			return err
		}

		var all []*models.CompensationHandler
		_ = b.loadJSON(txn, compensationAllKey(handler.ProcessInstanceID), &all)
		all = append(all, handler)
		return b.saveJSON(txn, compensationAllKey(handler.ProcessInstanceID), all)
	})
}

func (b *BadgerStateManager) GetCompensationHandler(ctx context.Context, processInstanceID, activityID string) (*models.CompensationHandler, error) {
	var h models.CompensationHandler
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, compensationKey(processInstanceID, activityID), &h)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (b *BadgerStateManager) ListCompensationHandlers(ctx context.Context, processInstanceID string) ([]*models.CompensationHandler, error) {
	var all []*models.CompensationHandler
	err := b.db.View(func(txn *badger.Txn) error {
		err := b.loadJSON(txn, compensationAllKey(processInstanceID), &all)
		if err == ErrNotFound {
			return nil
		}
		return err
	})
	return all, err
}

func (b *BadgerStateManager) ClearCompensationHandlers(ctx context.Context, processInstanceID string) error {
	handlers, err := b.ListCompensationHandlers(ctx, processInstanceID)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		for _, h := range handlers {
			if err := txn.Delete([]byte(compensationKey(processInstanceID, h.ActivityID))); err != nil {
				return err
			}
		}
		return txn.Delete([]byte(compensationAllKey(processInstanceID)))
	})
}

// --- Saga orchestration ---

func (b *BadgerStateManager) SaveSaga(ctx context.Context, saga *models.Saga) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, sagaKey(saga.ProcessInstanceID, saga.SagaID), saga)
	})
}

func (b *BadgerStateManager) GetSaga(ctx context.Context, processInstanceID, sagaID string) (*models.Saga, error) {
	var s models.Saga
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, sagaKey(processInstanceID, sagaID), &s)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// --- Gateway join state ---

func (b *BadgerStateManager) GetGatewaySyncState(ctx context.Context, gatewayID, processInstanceID string) (*models.GatewaySyncState, error) {
	var s models.GatewaySyncState
	err := b.db.View(func(txn *badger.Txn) error {
		return b.loadJSON(txn, gatewaySyncKey(gatewayID, processInstanceID), &s)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *BadgerStateManager) SaveGatewaySyncState(ctx context.Context, state *models.GatewaySyncState) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.saveJSON(txn, gatewaySyncKey(state.GatewayID, state.ProcessInstanceID), state)
	})
}

func (b *BadgerStateManager) DeleteGatewaySyncState(ctx context.Context, gatewayID, processInstanceID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(gatewaySyncKey(gatewayID, processInstanceID)))
	})
}
