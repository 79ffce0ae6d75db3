package enrichment

import "context"

type Repo interface {
	// Upsert stores p as the single record for its property, replacing any previous one.
	Upsert(ctx context.Context, p Params) (Params, error)
	GetByProperty(ctx context.Context, propertyID string) (Params, error)
}
