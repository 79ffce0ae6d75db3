package photos

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]Photo
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[int64]Photo)}
}

func (r *MemoryRepo) Create(ctx context.Context, p Photo) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	r.data[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return Photo{}, ErrNotFound
	}
	return p, nil
}

// ListByProperty returns photos oldest first.
func (r *MemoryRepo) ListByProperty(ctx context.Context, propertyID string) ([]Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Photo, 0)
	for _, p := range r.data {
		if p.PropertyID == propertyID {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) UpdateSection(ctx context.Context, id int64, section Section, updatedAt time.Time) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return Photo{}, ErrNotFound
	}
	p.Section = section
	p.UpdatedAt = updatedAt
	r.data[id] = p
	return p, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return 0, nil
	}
	delete(r.data, id)
	return 1, nil
}

// DeleteByProperty drops every photo of a property, mirroring the cascade in Postgres.
func (r *MemoryRepo) DeleteByProperty(ctx context.Context, propertyID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.data {
		if p.PropertyID == propertyID {
			delete(r.data, id)
		}
	}
	return nil
}
