package building

import "context"

// Repository defines the interface for building directory persistence.
type Repository interface {
	// Get retrieves a building by ID.
	// Returns ErrBuildingNotFound if the building doesn't exist.
	Get(ctx context.Context, id string) (*Building, error)

	// All retrieves every building, ordered by name. The campus directory
	// is small enough that search works over the full set.
	All(ctx context.Context) ([]*Building, error)

	// Upsert inserts or replaces a building. Used by the dataset loader.
	Upsert(ctx context.Context, b *Building) error

	// Count returns the number of buildings in the directory.
	Count(ctx context.Context) (int, error)
}
