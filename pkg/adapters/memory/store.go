package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/aretw0/lookahead/pkg/domain"
)

// Store implements ports.PlanStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.PlanRecord
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.PlanRecord),
	}
}

// Save persists a copy of the record in memory.
func (s *Store) Save(ctx context.Context, agentID string, record *domain.PlanRecord) error {
	copied := copyRecord(record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[agentID] = copied
	return nil
}

// Load retrieves a copy of the record, so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, agentID string) (*domain.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[agentID]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return copyRecord(record), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, agentID)
	return nil
}

// List returns the agents with a stored plan, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]string, 0, len(s.data))
	for id := range s.data {
		agents = append(agents, id)
	}
	sort.Strings(agents)
	return agents, nil
}

func copyRecord(r *domain.PlanRecord) *domain.PlanRecord {
	c := *r
	c.Steps = make([]domain.PlanStep, len(r.Steps))
	for i, step := range r.Steps {
		c.Steps[i] = domain.PlanStep{Name: step.Name, Params: maps.Clone(step.Params)}
	}
	return &c
}
