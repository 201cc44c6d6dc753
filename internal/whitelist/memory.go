// SPDX-License-Identifier: MPL-2.0

package whitelist

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is an in-memory Store. It remembers entries in append order and
// counts writes, which makes it suitable for asserting idempotence.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]string
	writes  int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]string)}
}

// Seed creates the whitelist of ns holding entries, bypassing write counting.
func (m *MemoryStore) Seed(ns string, entries ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[ns] = append(m.entries[ns], entries...)
	if m.entries[ns] == nil {
		m.entries[ns] = []string{}
	}
}

// Exists implements Store.
func (m *MemoryStore) Exists(ns string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[ns]
	return ok, nil
}

// Read implements Store.
func (m *MemoryStore) Read(ns string) (Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[ns]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ns, ErrNotInitialized)
	}
	return NewSet(e...), nil
}

// EnsureInitialized implements Store.
func (m *MemoryStore) EnsureInitialized(ns string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[ns]; !ok {
		m.entries[ns] = []string{}
		m.writes++
	}
	return nil
}

// AppendMissing implements Store.
func (m *MemoryStore) AppendMissing(ns string, required Set) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[ns]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ns, ErrNotInitialized)
	}
	missing := required.Difference(NewSet(e...)).Sorted()
	if len(missing) == 0 {
		return nil, nil
	}
	m.entries[ns] = append(e, missing...)
	m.writes++
	return missing, nil
}

// Entries returns the whitelist of ns in append order.
func (m *MemoryStore) Entries(ns string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries[ns])
}

// Namespaces returns every initialized namespace, sorted.
func (m *MemoryStore) Namespaces() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.entries))
}

// Writes returns the number of mutating calls that changed state.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
