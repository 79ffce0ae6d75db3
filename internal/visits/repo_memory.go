package visits

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]Visit
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[int64]Visit)}
}

func (r *MemoryRepo) Create(ctx context.Context, v Visit) (Visit, error) {
	if err := ctx.Err(); err != nil {
		return Visit{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	r.data[v.ID] = v
	return v, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Visit, error) {
	if err := ctx.Err(); err != nil {
		return Visit{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[id]
	if !ok {
		return Visit{}, ErrNotFound
	}
	return v, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Visit, error) {
	return r.filter(ctx, func(v Visit) bool { return v.UserID == userID })
}

func (r *MemoryRepo) ListByProperty(ctx context.Context, propertyID string) ([]Visit, error) {
	return r.filter(ctx, func(v Visit) bool { return v.PropertyID == propertyID })
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Visit) bool) ([]Visit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Visit, 0)
	for _, v := range r.data {
		if keep(v) {
			out = append(out, v)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, v Visit) (Visit, error) {
	if err := ctx.Err(); err != nil {
		return Visit{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[v.ID]; !ok {
		return Visit{}, ErrNotFound
	}
	r.data[v.ID] = v
	return v, nil
}

func (r *MemoryRepo) HasConflict(ctx context.Context, propertyID string, date time.Time, excludeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.data {
		if v.ID != excludeID && v.PropertyID == propertyID && v.Status != StatusCancelled && v.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

// DeleteByProperty drops the visits of a deleted property.
func (r *MemoryRepo) DeleteByProperty(ctx context.Context, propertyID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.data {
		if v.PropertyID == propertyID {
			delete(r.data, id)
		}
	}
	return nil
}
