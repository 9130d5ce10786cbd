package schedule

import "context"

// Repository defines the interface for schedule persistence.
type Repository interface {
	// Get retrieves a class by user ID and class ID.
	// Returns ErrClassNotFound if the class doesn't exist or doesn't belong
	// to the user.
	Get(ctx context.Context, userID, classID string) (*Class, error)

	// List retrieves all classes for a user, ordered by creation time.
	List(ctx context.Context, userID string) ([]*Class, error)

	// Create creates a new class.
	Create(ctx context.Context, c *Class) error

	// Delete deletes a class by user ID and class ID.
	// Returns ErrClassNotFound if nothing was deleted.
	Delete(ctx context.Context, userID, classID string) error
}
