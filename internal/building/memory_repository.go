package building

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	buildings map[string]*Building
}

// NewInMemoryRepository creates a new in-memory building repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		buildings: make(map[string]*Building),
	}
}

// Get retrieves a building by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Building, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buildings[id]
	if !ok {
		return nil, ErrBuildingNotFound
	}

	cpy := *b
	return &cpy, nil
}

// All retrieves every building, ordered by name.
func (r *InMemoryRepository) All(_ context.Context) ([]*Building, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buildings := make([]*Building, 0, len(r.buildings))
	for _, b := range r.buildings {
		cpy := *b
		buildings = append(buildings, &cpy)
	}
	sort.Slice(buildings, func(i, j int) bool { return buildings[i].Name < buildings[j].Name })

	return buildings, nil
}

// Upsert inserts or replaces a building.
func (r *InMemoryRepository) Upsert(_ context.Context, b *Building) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *b
	r.buildings[b.ID] = &cpy
	return nil
}

// Count returns the number of buildings in the directory.
func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buildings), nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
