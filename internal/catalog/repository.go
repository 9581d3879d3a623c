package catalog

import "context"

// Repository defines read access to the location catalog.
// The engine never writes through this interface.
type Repository interface {
	// ListByCity returns all locations in a city. An unknown city yields an
	// empty slice, not an error.
	ListByCity(ctx context.Context, city string) ([]*Location, error)

	// Get retrieves a location by ID.
	Get(ctx context.Context, id string) (*Location, error)
}
