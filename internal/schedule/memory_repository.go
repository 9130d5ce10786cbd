package schedule

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewInMemoryRepository creates a new in-memory schedule repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		classes: make(map[string]*Class),
	}
}

// Get retrieves a class by user ID and class ID.
func (r *InMemoryRepository) Get(_ context.Context, userID, classID string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[classID]
	if !ok || c.UserID != userID {
		return nil, ErrClassNotFound
	}

	cpy := *c
	return &cpy, nil
}

// List retrieves all classes for a user, ordered by creation time.
func (r *InMemoryRepository) List(_ context.Context, userID string) ([]*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var classes []*Class
	for _, c := range r.classes {
		if c.UserID == userID {
			cpy := *c
			classes = append(classes, &cpy)
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		if !classes[i].CreatedAt.Equal(classes[j].CreatedAt) {
			return classes[i].CreatedAt.Before(classes[j].CreatedAt)
		}
		return classes[i].ID < classes[j].ID
	})

	return classes, nil
}

// Create creates a new class.
func (r *InMemoryRepository) Create(_ context.Context, c *Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *c
	r.classes[c.ID] = &cpy
	return nil
}

// Delete deletes a class by user ID and class ID.
func (r *InMemoryRepository) Delete(_ context.Context, userID, classID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.classes[classID]
	if !ok || c.UserID != userID {
		return ErrClassNotFound
	}

	delete(r.classes, classID)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
