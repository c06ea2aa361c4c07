// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/triage"
)

// Store holds triage runs in memory. Suitable for dev/testing.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*triage.Run // run ID -> run
	seen map[string]string      // webhook delivery ID -> run ID (dedup)
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		runs: make(map[string]*triage.Run),
		seen: make(map[string]string),
	}
}

// Get retrieves a triage run by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triage.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// GetByDelivery retrieves a triage run by webhook delivery ID, for
// redelivery deduplication. Returns a copy.
func (s *Store) GetByDelivery(_ context.Context, deliveryID string) (*triage.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.seen[deliveryID]
	if !ok {
		return nil, false, nil
	}
	r := s.runs[id]
	cp := *r
	return &cp, true, nil
}

// Put stores a copy of the triage run.
func (s *Store) Put(_ context.Context, r *triage.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.runs[r.ID] = &cp
	if r.DeliveryID != "" {
		s.seen[r.DeliveryID] = r.ID
	}
	return nil
}
