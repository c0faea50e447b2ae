// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"path/filepath"
	"time"
)

// Operational triplet file names under central/.
const (
	tripletConfigFile = "config.json"
	tripletDataFile   = "data.json"
	tripletLogFile    = "log.json"

	// OperationLogCap bounds the operation ring in log.json.
	OperationLogCap = 100
)

type (
	// OperationalConfig holds tunables persisted alongside the registry.
	// Non-empty slices override the application config; empty means "no
	// override". The set of ignored modules lives here so a workspace can
	// extend the defaults without touching the user's config file.
	OperationalConfig struct {
		LongRunningKeywords []string `json:"long_running_keywords,omitempty"`
		LongBoundedCommands []string `json:"long_bounded_commands,omitempty"`
		IgnoredModules      []string `json:"ignored_modules,omitempty"`
	}

	// OperationalData holds simple counters bumped per invocation.
	OperationalData struct {
		// Invocations counts router runs that reached dispatch.
		Invocations int `json:"invocations"`
		// Failures counts non-success supervision outcomes.
		Failures int `json:"failures"`
	}

	// OperationEntry is one record in the bounded operation log.
	OperationEntry struct {
		// Timestamp is when the operation completed.
		Timestamp time.Time `json:"timestamp"`
		// Op names the routing path taken (direct, slash, shortcut, run).
		Op string `json:"op"`
		// Target is the branch or module dispatched to.
		Target string `json:"target"`
		// Outcome is the supervision outcome class.
		Outcome string `json:"outcome"`
		// DurationMS is the wall time of the child in milliseconds.
		DurationMS int64 `json:"duration_ms"`
	}

	// operationLog is the persisted shape of log.json.
	operationLog struct {
		Operations []OperationEntry `json:"operations"`
	}
)

// LoadOperationalConfig reads central/config.json. Missing or corrupt
// files yield the zero value (no overrides).
func (s *Store) LoadOperationalConfig() (OperationalConfig, error) {
	var cfg OperationalConfig
	if _, err := s.loadOrHeal(s.tripletPath(tripletConfigFile), &cfg, func() any {
		return OperationalConfig{}
	}); err != nil {
		return OperationalConfig{}, err
	}
	return cfg, nil
}

// LoadOperationalData reads central/data.json counters.
func (s *Store) LoadOperationalData() (OperationalData, error) {
	var data OperationalData
	if _, err := s.loadOrHeal(s.tripletPath(tripletDataFile), &data, func() any {
		return OperationalData{}
	}); err != nil {
		return OperationalData{}, err
	}
	return data, nil
}

// SaveOperationalData writes central/data.json atomically.
func (s *Store) SaveOperationalData(data OperationalData) error {
	return s.writeJSON(s.tripletPath(tripletDataFile), data)
}

// AppendOperation appends an entry to the bounded operation ring in
// central/log.json, dropping the oldest entries beyond OperationLogCap.
func (s *Store) AppendOperation(entry OperationEntry) error {
	var ring operationLog
	if _, err := s.loadOrHeal(s.tripletPath(tripletLogFile), &ring, func() any {
		return operationLog{Operations: []OperationEntry{}}
	}); err != nil {
		return err
	}
	ring.Operations = append(ring.Operations, entry)
	if excess := len(ring.Operations) - OperationLogCap; excess > 0 {
		ring.Operations = ring.Operations[excess:]
	}
	return s.writeJSON(s.tripletPath(tripletLogFile), ring)
}

// RecentOperations returns the persisted operation ring, oldest first.
func (s *Store) RecentOperations() ([]OperationEntry, error) {
	var ring operationLog
	if _, err := s.loadOrHeal(s.tripletPath(tripletLogFile), &ring, func() any {
		return operationLog{Operations: []OperationEntry{}}
	}); err != nil {
		return nil, err
	}
	return ring.Operations, nil
}

func (s *Store) tripletPath(name string) string {
	return filepath.Join(s.CentralDir(), name)
}
