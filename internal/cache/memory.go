package cache

import (
	"context"

	"github.com/sells-group/geo-resolver/internal/query"
)

// Memory is a process-local Store. Nothing survives the process; it backs
// dry runs and tests.
type Memory struct {
	data map[string]Entry
}

// NewMemory creates an empty Memory store, optionally pre-populated.
func NewMemory(seed map[string]Entry) *Memory {
	m := &Memory{data: make(map[string]Entry, len(seed))}
	for q, e := range seed {
		m.data[q] = e
	}
	return m
}

// Load implements Store.
func (m *Memory) Load(_ context.Context) error {
	for _, key := range query.PurgeKeys() {
		delete(m.data, key)
	}
	return nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, q string) (Entry, error) {
	return m.data[q], nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, q string, e Entry) error {
	if e.State == Absent {
		return errPutAbsent
	}
	m.data[q] = e
	return nil
}

// Entries implements Store.
func (m *Memory) Entries(_ context.Context) (map[string]Entry, error) {
	out := make(map[string]Entry, len(m.data))
	for q, e := range m.data {
		out[q] = e
	}
	return out, nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
