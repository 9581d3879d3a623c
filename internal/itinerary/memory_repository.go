package itinerary

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local development. Production should use
// PostgresRepository.
type InMemoryRepository struct {
	mu          sync.RWMutex
	itineraries map[string]*Itinerary
}

// NewInMemoryRepository creates a new in-memory itinerary repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		itineraries: make(map[string]*Itinerary),
	}
}

// Get retrieves an itinerary by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Itinerary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.itineraries[id]
	if !ok {
		return nil, ErrItineraryNotFound
	}
	return it.Clone(), nil
}

// GetByUserAndID retrieves an itinerary owned by a user.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, id string) (*Itinerary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.itineraries[id]
	if !ok || it.UserID != userID {
		return nil, ErrItineraryNotFound
	}
	return it.Clone(), nil
}

// List retrieves a user's itineraries, newest first.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*Itinerary
	for _, it := range r.itineraries {
		if it.UserID == userID {
			items = append(items, it.Clone())
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	if opts.Cursor != "" {
		for i, it := range items {
			if it.ID == opts.Cursor {
				items = items[i+1:]
				break
			}
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		result.NextCursor = items[limit-1].ID
	}
	return result, nil
}

// Create stores a new itinerary.
func (r *InMemoryRepository) Create(_ context.Context, it *Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.itineraries[it.ID] = it.Clone()
	return nil
}

// Update replaces a stored itinerary.
func (r *InMemoryRepository) Update(_ context.Context, it *Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.itineraries[it.ID]
	if !ok {
		return ErrItineraryNotFound
	}
	if existing.Version != it.Version-1 {
		return ErrVersionConflict
	}

	r.itineraries[it.ID] = it.Clone()
	return nil
}

// Delete deletes an itinerary by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.itineraries, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
