/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import "time"

// TimerType defines what kind of BPMN element scheduled the timer.
type TimerType string

const (
	TimerTypeStart    TimerType = "START"
	TimerTypeBoundary TimerType = "BOUNDARY"
	TimerTypeEvent    TimerType = "EVENT"
)

// TimerState defines the lifecycle state of a scheduled timer.
type TimerState string

const (
	TimerStateScheduled TimerState = "SCHEDULED"
	TimerStateFired     TimerState = "FIRED"
	TimerStateCancelled TimerState = "CANCELLED"
)

// TimerExpression captures the three ISO-8601 forms a BPMN timer
// definition can take: a fixed date, a duration, or a repeating cycle.
// Exactly one of Date, Duration, Cycle is set.
type TimerExpression struct {
	Date     *string `json:"time_date,omitempty"`
	Duration *string `json:"time_duration,omitempty"`
	Cycle    *string `json:"time_cycle,omitempty"`
}

// Timer is a scheduled wake-up for a timer start event, intermediate
// timer event, or boundary timer event.
type Timer struct {
	ID                string                 `json:"id"`
	ElementID         string                 `json:"element_id"`
	ProcessInstanceID string                 `json:"process_instance_id"`
	TokenID           string                 `json:"token_id"`
	Type              TimerType              `json:"type"`
	State             TimerState             `json:"state"`
	Expression        TimerExpression        `json:"expression"`
	DueDate           time.Time              `json:"due_date"`
	RemainingCycles   *int                   `json:"remaining_cycles,omitempty"`
	Variables         map[string]interface{} `json:"variables"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`

	ProcessContext *TimerProcessContext `json:"process_context,omitempty"`
}

// TimerProcessContext carries the process identity needed to resume
// execution once a timer fires, without re-reading the full graph.
type TimerProcessContext struct {
	ProcessKey      string `json:"process_key"`
	ProcessVersion  int    `json:"process_version"`
	ProcessName     string `json:"process_name"`
	ComponentSource string `json:"component_source"`
}

// NewTimer creates a scheduled timer due at dueDate.
func NewTimer(elementID, processInstanceID, tokenID string, timerType TimerType, dueDate time.Time) *Timer {
	now := time.Now()
	return &Timer{
		ID:                GenerateID(),
		ElementID:         elementID,
		ProcessInstanceID: processInstanceID,
		TokenID:           tokenID,
		Type:              timerType,
		State:             TimerStateScheduled,
		DueDate:           dueDate,
		Variables:         make(map[string]interface{}),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// MarkFired transitions the timer to FIRED.
func (t *Timer) MarkFired() {
	t.State = TimerStateFired
	t.UpdatedAt = time.Now()
}

// MarkCancelled transitions the timer to CANCELLED, e.g. because its
// owning activity completed or a sibling boundary event won the race.
func (t *Timer) MarkCancelled() {
	t.State = TimerStateCancelled
	t.UpdatedAt = time.Now()
}

// IsDue reports whether the timer's due date has passed.
func (t *Timer) IsDue(now time.Time) bool {
	return t.State == TimerStateScheduled && !now.Before(t.DueDate)
}

// HasRemainingCycles reports whether a cyclic (R<n>/...) timer has more
// repetitions left. A nil RemainingCycles means unbounded (R/... with no
// count, or a plain duration/date timer that never repeats).
func (t *Timer) HasRemainingCycles() bool {
	return t.RemainingCycles == nil || *t.RemainingCycles > 0
}
