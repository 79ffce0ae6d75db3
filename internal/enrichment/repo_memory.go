package enrichment

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Params
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Params)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, p Params) (Params, error) {
	if err := ctx.Err(); err != nil {
		return Params{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.data[p.PropertyID]; ok {
		p.ID = prev.ID
		p.CreatedAt = prev.CreatedAt
	}
	photos := make([]string, len(p.RecommendedPhotos))
	copy(photos, p.RecommendedPhotos)
	p.RecommendedPhotos = photos
	r.data[p.PropertyID] = p
	return p, nil
}

func (r *MemoryRepo) GetByProperty(ctx context.Context, propertyID string) (Params, error) {
	if err := ctx.Err(); err != nil {
		return Params{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[propertyID]
	if !ok {
		return Params{}, ErrNotFound
	}
	return p, nil
}

// DeleteByProperty drops the record of a deleted property.
func (r *MemoryRepo) DeleteByProperty(ctx context.Context, propertyID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.data, propertyID)
	r.mu.Unlock()
	return nil
}
