package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"housy-backend/internal/events"
	"housy-backend/internal/shared/telemetry"
)

const maxMessageLen = 2000

// PropertyLookup reports whether a property exists.
type PropertyLookup interface {
	Exists(ctx context.Context, propertyID string) (bool, error)
}

type Service struct {
	Repo       Repo
	Properties PropertyLookup
	Events     events.Publisher
	Now        func() time.Time
}

func NewService(repo Repo, properties PropertyLookup, publisher events.Publisher) *Service {
	return &Service{Repo: repo, Properties: properties, Events: publisher, Now: time.Now}
}

// Create records a lead for propertyID on behalf of userID and emits lead.created.
func (s *Service) Create(ctx context.Context, userID, propertyID, message string) (Lead, error) {
	if _, err := uuid.Parse(propertyID); err != nil {
		return Lead{}, fmt.Errorf("%w: propertyId must be a uuid", ErrInvalidInput)
	}
	message = strings.TrimSpace(message)
	if len(message) > maxMessageLen {
		return Lead{}, fmt.Errorf("%w: message too long", ErrInvalidInput)
	}
	if s.Properties != nil {
		ok, err := s.Properties.Exists(ctx, propertyID)
		if err != nil {
			return Lead{}, fmt.Errorf("lookup property: %w", err)
		}
		if !ok {
			return Lead{}, ErrPropertyNotFound
		}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().UTC()
	l := Lead{
		ID:         uuid.NewString(),
		UserID:     userID,
		PropertyID: propertyID,
		Message:    message,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return Lead{}, err
	}

	telemetry.Info("lead created", map[string]any{
		"lead_id":     l.ID,
		"property_id": propertyID,
		"user_id":     userID,
	})
	events.Emit(ctx, s.Events, events.LeadCreated, l.ID)
	return l, nil
}

func (s *Service) List(ctx context.Context, propertyID string) ([]Lead, error) {
	return s.Repo.List(ctx, propertyID)
}

func (s *Service) Get(ctx context.Context, id string) (Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Lead{}, fmt.Errorf("%w: lead id must be a uuid", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: lead id must be a uuid", ErrInvalidInput)
	}
	n, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
