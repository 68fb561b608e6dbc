// Package store provides in-memory implementations of the pay
// persistence contracts, for tests and development.
package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/shiftwork/paybook/pay"
)

// =============================================================================
// MEMORY STORE - RecordStore + SettingsStore in one
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	rows     []pay.RawRecord
	settings map[settingKey]string
}

type settingKey struct {
	Owner string
	Key   string
}

func NewMemory() *Memory {
	return &Memory{settings: make(map[settingKey]string)}
}

// ReadAll returns the owner's rows in insertion (id) order. Empty owner
// matches everything.
func (m *Memory) ReadAll(_ context.Context, owner string) ([]pay.RawRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []pay.RawRecord
	for _, row := range m.rows {
		if owner == "" || row.Owner == owner {
			out = append(out, row)
		}
	}
	return out, nil
}

// Append stores a validated record under id max+1 (1 when empty).
func (m *Memory) Append(_ context.Context, rec pay.ActivityRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var max int64
	for _, row := range m.rows {
		if id, err := strconv.ParseInt(row.ID, 10, 64); err == nil && id > max {
			max = id
		}
	}
	rec.ID = max + 1
	m.rows = append(m.rows, pay.EncodeRecord(rec))
	return rec.ID, nil
}

// AppendRaw stores a row verbatim, bypassing validation and id
// assignment. Tests use it to plant malformed rows.
func (m *Memory) AppendRaw(row pay.RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
}

// DeleteByID removes exactly one row; no-op when absent.
func (m *Memory) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := strconv.FormatInt(id, 10)
	for i, row := range m.rows {
		if row.ID == want {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Get returns a setting value or pay.ErrSettingNotFound.
func (m *Memory) Get(_ context.Context, owner, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.settings[settingKey{Owner: owner, Key: key}]
	if !ok {
		return "", pay.ErrSettingNotFound
	}
	return v, nil
}

// Set stores or overwrites a setting value.
func (m *Memory) Set(_ context.Context, owner, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[settingKey{Owner: owner, Key: key}] = value
	return nil
}
