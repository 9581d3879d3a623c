package catalog

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// It backs local development and tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	locations map[string]*Location
}

// NewInMemoryRepository creates a repository holding the given locations.
func NewInMemoryRepository(locations ...*Location) *InMemoryRepository {
	r := &InMemoryRepository{
		locations: make(map[string]*Location, len(locations)),
	}
	for _, l := range locations {
		r.locations[l.ID] = l.Clone()
	}
	return r
}

// Upsert adds or replaces a location.
func (r *InMemoryRepository) Upsert(l *Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = l.Clone()
}

// ListByCity returns all locations in a city ordered by ID.
func (r *InMemoryRepository) ListByCity(_ context.Context, city string) ([]*Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := CityKey(city)
	var out []*Location
	for _, l := range r.locations {
		if CityKey(l.City) == key {
			out = append(out, l.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get retrieves a location by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.locations[id]
	if !ok {
		return nil, ErrLocationNotFound
	}
	return l.Clone(), nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
