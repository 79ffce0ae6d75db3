package photos

import (
	"context"
	"time"
)

// Repo defines persistence operations for photos.
type Repo interface {
	// Create inserts p and returns it with ID and timestamps set.
	Create(ctx context.Context, p Photo) (Photo, error)
	GetByID(ctx context.Context, id int64) (Photo, error)
	ListByProperty(ctx context.Context, propertyID string) ([]Photo, error)
	UpdateSection(ctx context.Context, id int64, section Section, updatedAt time.Time) (Photo, error)
	// Delete removes the row and reports the number of rows affected.
	Delete(ctx context.Context, id int64) (int64, error)
}
