package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore implements Store with in-memory tables, suitable for tests
// and local development without the external spreadsheet.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]Row)}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, table string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], append(Row(nil), row...))
	return nil
}

// Query implements Store.
func (s *MemoryStore) Query(_ context.Context, table string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.tables[table]
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = append(Row(nil), row...)
	}
	return out, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, table string, index int, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("%w: no row %d in %s", ErrStoreUnavailable, index, table)
	}
	rows[index] = append(Row(nil), row...)
	return nil
}
