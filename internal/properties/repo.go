package properties

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("property not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Repo interface {
	Create(ctx context.Context, p Property) error
	GetByID(ctx context.Context, id string) (Property, error)
	List(ctx context.Context, f Filter) ([]Property, error)
	Update(ctx context.Context, p Property) error
	Delete(ctx context.Context, id string) (int64, error)
}
