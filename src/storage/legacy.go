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

	"github.com/atombpmn/flowrt/src/core/models"
)

// Storage is the full persistence surface src/process, src/messages and
// src/incidents depend on. It embeds StateManager's CAS-guarded token,
// timer, variable, subscription and compensation primitives and adds the
// single-writer record types (process instances, deployed BPMN process
// definitions, buffered messages, correlation results and incidents)
// that have no CAS requirement and so never needed the version-fenced
// API. Both BadgerStateManager and RedisStateManager implement it.
type Storage interface {
	StateManager

	// Tokens, addressed directly rather than through the CAS primitives
	// where a caller already owns exclusive access to the token (e.g. it
	// was just loaded and mutated in the same goroutine).
	SaveToken(token *models.Token) error
	LoadToken(tokenID string) (*models.Token, error)
	UpdateToken(token *models.Token) error
	DeleteToken(tokenID string) error
	LoadTokensByProcessInstance(processInstanceID string) ([]*models.Token, error)
	LoadActiveTokens() ([]*models.Token, error)
	LoadTokensByState(state models.TokenState) ([]*models.Token, error)
	LoadAllTokens() ([]*models.Token, error)

	LoadTimer(timerID string) (*models.Timer, error)
	LoadAllTimers() ([]*models.Timer, error)
	UpdateTimer(timer *models.Timer) error

	// Process instances
	SaveProcessInstance(instance *models.ProcessInstance) error
	LoadProcessInstance(instanceID string) (*models.ProcessInstance, error)
	UpdateProcessInstance(instance *models.ProcessInstance) error
	LoadAllProcessInstances() ([]*models.ProcessInstance, error)
	LoadProcessInstancesByProcessKey(processKey string) ([]*models.ProcessInstance, error)

	// Deployed BPMN process definitions, stored as the raw JSON graph
	// produced at deploy time and parsed lazily by callers.
	LoadBPMNProcess(processKey string) ([]byte, error)
	LoadBPMNProcessByProcessID(processID string, version int) ([]byte, string, error)

	// Message buffering (a message published with no matching
	// subscription yet, held until one registers or it expires).
	SaveBufferedMessage(ctx context.Context, message *models.BufferedMessage) error
	GetBufferedMessage(ctx context.Context, messageID string) (*models.BufferedMessage, error)
	DeleteBufferedMessage(ctx context.Context, messageID string) error
	ListBufferedMessages(ctx context.Context, tenantID string, limit, offset int) ([]*models.BufferedMessage, error)

	// Message correlation audit trail.
	SaveMessageCorrelationResult(ctx context.Context, result *models.MessageCorrelationResult) error
	ListMessageCorrelationResults(ctx context.Context, tenantID, messageName, correlationKey string, limit, offset int) ([]*models.MessageCorrelationResult, error)
	DeleteMessageCorrelationResult(ctx context.Context, id string) error

	// Message-start-event subscriptions, addressed by (tenant, process,
	// start event) rather than the name/correlation-key index the
	// CAS-based CreateMessageSubscription/FindMessageSubscriptions pair
	// above serves.
	SaveProcessMessageSubscription(ctx context.Context, sub *models.ProcessMessageSubscription) error
	GetProcessMessageSubscription(ctx context.Context, tenantID, processKey, startEventID string) (*models.ProcessMessageSubscription, error)
	ListProcessMessageSubscriptions(ctx context.Context, tenantID string, limit, offset int) ([]*models.ProcessMessageSubscription, error)
	DeleteProcessMessageSubscription(ctx context.Context, id string) error

	// Incidents. Typed as interface{} on the storage side so this
	// package never has to import src/incidents (which itself imports
	// storage.Storage) — callers hand in and convert back their own
	// *incidents.Incident via JSON round-trip.
	SaveIncident(incident interface{}) error
	GetIncident(incidentID string) (interface{}, error)
	ListIncidents(filter interface{}) ([]interface{}, int, error)
}

// incidentFilterFields is the JSON shape of incidents.IncidentFilter,
// duplicated here (rather than imported, which would cycle back through
// src/incidents -> src/storage) so both backends can filter the raw
// incident records they store without knowing the incidents package's
// concrete Go types.
type incidentFilterFields struct {
	Status            []string `json:"status,omitempty"`
	Type              []string `json:"type,omitempty"`
	ProcessInstanceID string   `json:"process_instance_id,omitempty"`
	ProcessKey        string   `json:"process_key,omitempty"`
	ElementID         string   `json:"element_id,omitempty"`
	JobKey            string   `json:"job_key,omitempty"`
	WorkerID          string   `json:"worker_id,omitempty"`
	Limit             int      `json:"limit,omitempty"`
	Offset            int      `json:"offset,omitempty"`
}

func decodeIncidentFilter(filter interface{}) incidentFilterFields {
	var f incidentFilterFields
	if filter == nil {
		return f
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return f
	}
	_ = json.Unmarshal(data, &f)
	return f
}

// matchesIncidentFilter applies f against a JSON-decoded incident record.
func matchesIncidentFilter(f incidentFilterFields, record map[string]interface{}) bool {
	if f.ProcessInstanceID != "" && record["process_instance_id"] != f.ProcessInstanceID {
		return false
	}
	if f.ProcessKey != "" && record["process_key"] != f.ProcessKey {
		return false
	}
	if f.ElementID != "" && record["element_id"] != f.ElementID {
		return false
	}
	if f.JobKey != "" && record["job_key"] != f.JobKey {
		return false
	}
	if f.WorkerID != "" && record["worker_id"] != f.WorkerID {
		return false
	}
	if len(f.Status) > 0 {
		status, _ := record["status"].(string)
		if !containsString(f.Status, status) {
			return false
		}
	}
	if len(f.Type) > 0 {
		typ, _ := record["type"].(string)
		if !containsString(f.Type, typ) {
			return false
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func paginate(matched []interface{}, limit, offset int) []interface{} {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []interface{}{}
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end]
}
