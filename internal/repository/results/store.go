// Package results keeps completed scan results in memory, keyed by task id.
// Persistence of results across restarts is outside the engine's scope; only
// fingerprints and vectors survive a restart.
package results

import (
	"sync"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

// Store is a thread-safe in-memory result store preserving insertion order.
type Store struct {
	mu      sync.RWMutex
	results map[string]domain.ScanResult
	order   []string
}

// New creates an empty result store.
func New() *Store {
	return &Store{results: make(map[string]domain.ScanResult)}
}

// Save stores a result under its file id, overwriting any previous entry.
func (s *Store) Save(result domain.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[result.FileID]; !exists {
		s.order = append(s.order, result.FileID)
	}
	s.results[result.FileID] = result
}

// Get returns the result for the given task id.
func (s *Store) Get(taskID string) (domain.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[taskID]
	if !ok {
		return domain.ScanResult{}, domain.ErrResultNotFound
	}
	return result, nil
}

// List returns all results in insertion order.
func (s *Store) List() []domain.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ScanResult, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.results[id])
	}
	return out
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Clear removes all stored results.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[string]domain.ScanResult)
	s.order = nil
}
