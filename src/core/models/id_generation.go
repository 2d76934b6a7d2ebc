/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Global instance name used to prefix generated IDs with the node that
// created them, so IDs stay traceable back to a worker in a multi-node
// deployment.
var (
	instanceName string
	instanceMu   sync.RWMutex
)

// SetInstanceName sets instance name for ID generation
func SetInstanceName(name string) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instanceName = name
}

// GetInstanceName returns current instance name
func GetInstanceName() string {
	instanceMu.RLock()
	defer instanceMu.RUnlock()
	return instanceName
}

// GenerateID returns a node-prefixed UUIDv4. The prefix carries the same
// 4-character normalized instance name the engine has always used; the
// random part is now a real UUID rather than a hand-rolled NanoID.
func GenerateID() string {
	return getNodePrefix() + "-" + uuid.NewString()
}

func getNodePrefix() string {
	instanceMu.RLock()
	name := instanceName
	instanceMu.RUnlock()

	if name == "" {
		name = "unkn"
	}

	cleaned := strings.ToLower(strings.ReplaceAll(name, ".", ""))
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "_", "")

	if len(cleaned) >= 4 {
		return cleaned[:4]
	}
	for len(cleaned) < 4 {
		cleaned += "0"
	}
	return cleaned
}
