package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB              Pinger
	StorageProvider string
}

// NewService constructs a new health service. A nil db means in-memory repositories.
func NewService(db Pinger, storageProvider string) *Service {
	return &Service{DB: db, StorageProvider: storageProvider}
}

// Status reports component state and whether the process can serve traffic.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	out := map[string]any{
		"ok":      true,
		"storage": s.StorageProvider,
	}
	if s.DB == nil {
		out["database"] = "memory"
		return out, true
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out["ok"] = false
		out["database"] = "down"
		return out, false
	}
	out["database"] = "up"
	return out, true
}
