/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package storage

import "fmt"

// Key layouts shared by both backends. The compensation-handler scheme
// (per-activity key plus an append-only "all" list) mirrors the Redis
// layout observed in the original pythmata test fixtures, so the two
// StateManager implementations agree on how a handler round-trips even
// though BadgerStateManager has no native list type to back the "all"
// key with.
func tokenKey(tokenID string) string          { return "token:" + tokenID }
func tokensByInstancePrefix(pid string) string { return fmt.Sprintf("tokens:%s:", pid) }
func tokenByInstanceKey(pid, tokenID string) string {
	return fmt.Sprintf("tokens:%s:%s", pid, tokenID)
}

func variableKey(pid, scopeID, name string) string {
	if scopeID == "" {
		scopeID = "root"
	}
	return fmt.Sprintf("variable:%s:%s:%s", pid, scopeID, name)
}
func variablesPrefix(pid, scopeID string) string {
	if scopeID == "" {
		scopeID = "root"
	}
	return fmt.Sprintf("variable:%s:%s:", pid, scopeID)
}

func timerKey(timerID string) string { return "timer:" + timerID }
func timerActivityIndexKey(pid, elementID, timerID string) string {
	return fmt.Sprintf("process:%s:timer:%s:%s", pid, elementID, timerID)
}
func timerActivityIndexPrefix(pid string) string {
	return fmt.Sprintf("process:%s:timer:", pid)
}

func messageSubKey(id string) string { return "message_sub:" + id }
func messageSubByNameKey(name, correlationKey, id string) string {
	return fmt.Sprintf("message_sub_idx:%s:%s:%s", name, correlationKey, id)
}
func messageSubByNamePrefix(name, correlationKey string) string {
	return fmt.Sprintf("message_sub_idx:%s:%s:", name, correlationKey)
}

func signalSubKey(id string) string { return "signal_sub:" + id }
func signalSubByNameKey(name, id string) string {
	return fmt.Sprintf("signal_sub_idx:%s:%s", name, id)
}
func signalSubByNamePrefix(name string) string { return fmt.Sprintf("signal_sub_idx:%s:", name) }

// compensationKey mirrors the pythmata layout exactly:
// compensation:{instance_id}:{activity_id}
func compensationKey(processInstanceID, activityID string) string {
	return fmt.Sprintf("compensation:%s:%s", processInstanceID, activityID)
}

// compensationAllKey mirrors compensation:{instance_id}:all, the
// append-only ordered list used to replay/clear handlers in registration
// order without needing to know every activity ID up front.
func compensationAllKey(processInstanceID string) string {
	return fmt.Sprintf("compensation:%s:all", processInstanceID)
}

// sagaKey stores the current snapshot of a saga orchestration run, one
// per (processInstanceID, sagaID) pair.
func sagaKey(processInstanceID, sagaID string) string {
	return fmt.Sprintf("saga:%s:%s", processInstanceID, sagaID)
}

func gatewaySyncKey(gatewayID, processInstanceID string) string {
	return fmt.Sprintf("gateway_sync:%s:%s", processInstanceID, gatewayID)
}

// Legacy-shaped records (process instances, deployed BPMN definitions,
// message buffering and correlation bookkeeping, incidents) that
// src/process, src/messages and src/incidents address directly rather
// than through the CAS-guarded StateManager primitives above.

func processInstanceKey(instanceID string) string { return "process_instance:" + instanceID }

func bpmnProcessKey(processKey string) string { return "bpmn_process:" + processKey }

func bufferedMessageKey(id string) string { return "buffered_message:" + id }

func correlationResultKey(id string) string { return "correlation_result:" + id }

// procMsgSubLegacyKey/Prefix back a flat, full-scan store: subscription
// volume per process is small enough that scanning and filtering
// in-memory (by tenant, then by process key + start event) is simpler
// and less bug-prone than maintaining composite secondary indexes.
func procMsgSubLegacyKey(id string) string { return "proc_msg_sub_legacy:" + id }
func procMsgSubLegacyPrefix() string       { return "proc_msg_sub_legacy:" }

func incidentKey(id string) string { return "incident:" + id }
