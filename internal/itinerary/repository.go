package itinerary

import "context"

// ListOptions contains options for listing itineraries.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing itineraries.
type ListResult struct {
	Items      []*Itinerary
	NextCursor string
}

// Repository defines the persistence boundary for itineraries.
type Repository interface {
	// Get retrieves an itinerary by ID.
	Get(ctx context.Context, id string) (*Itinerary, error)

	// GetByUserAndID retrieves an itinerary owned by a user.
	// Returns ErrItineraryNotFound if it doesn't exist or belongs to someone else.
	GetByUserAndID(ctx context.Context, userID, id string) (*Itinerary, error)

	// List retrieves a user's itineraries, newest first.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// Create stores a new itinerary.
	Create(ctx context.Context, it *Itinerary) error

	// Update replaces a stored itinerary. The caller increments Version; the
	// update fails with ErrVersionConflict unless the stored version is
	// exactly one behind.
	Update(ctx context.Context, it *Itinerary) error

	// Delete deletes an itinerary by ID.
	Delete(ctx context.Context, id string) error
}
