/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

// BPMNProcess is the deployed, parsed form of a BPMN process definition:
// the BPMN XML reduced to a flat element-ID-keyed graph the engine walks
// at execution time, rather than re-parsing XML on every token advance.
type BPMNProcess struct {
	ProcessID      string                 `json:"process_id"`
	ProcessName    string                 `json:"process_name"`
	ProcessVersion int                    `json:"process_version"`
	IsExecutable   bool                   `json:"is_executable"`
	Elements       map[string]interface{} `json:"elements"`
}
