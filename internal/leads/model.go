package leads

import (
	"context"
	"errors"
	"time"
)

// Lead records a prospect's interest in a property.
type Lead struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	PropertyID string    `json:"propertyId"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("lead not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPropertyNotFound = errors.New("property not found")
)

type Repo interface {
	Create(ctx context.Context, l Lead) error
	GetByID(ctx context.Context, id string) (Lead, error)
	// List returns leads newest first; an empty propertyID lists all.
	List(ctx context.Context, propertyID string) ([]Lead, error)
	Delete(ctx context.Context, id string) (int64, error)
}
