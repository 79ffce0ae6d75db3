package properties

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"housy-backend/internal/events"
	"housy-backend/internal/shared/auth"
	"housy-backend/internal/shared/telemetry"
)

// DependentStore holds rows that belong to a property. Postgres removes those
// rows through ON DELETE CASCADE; memory repos are registered here instead.
type DependentStore interface {
	DeleteByProperty(ctx context.Context, propertyID string) error
}

type Service struct {
	Repo       Repo
	Events     events.Publisher
	Dependents []DependentStore
	Now        func() time.Time
}

func NewService(repo Repo, publisher events.Publisher) *Service {
	return &Service{Repo: repo, Events: publisher, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Input carries writable property fields. Nil pointers are left untouched on update.
type Input struct {
	Title       *string
	Description *string
	Price       *float64
	Bedrooms    *int
	Bathrooms   *int
	Location    *string
	Latitude    *float64
	Longitude   *float64
	Status      *string
	UserID      *string
}

func (s *Service) List(ctx context.Context, f Filter) ([]Property, error) {
	return s.Repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (Property, error) {
	if err := validateID(id); err != nil {
		return Property{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

// Exists reports whether a property with id is stored. Malformed ids simply do not exist.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if validateID(id) != nil {
		return false, nil
	}
	_, err := s.Repo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Create stores a new property. The owner defaults to the caller.
func (s *Service) Create(ctx context.Context, caller auth.Claims, in Input) (Property, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return Property{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	now := s.now()
	p := Property{
		ID:        uuid.NewString(),
		UserID:    caller.UserID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := apply(&p, in); err != nil {
		return Property{}, err
	}
	if in.UserID != nil && caller.Role == auth.RoleAdmin {
		p.UserID = strings.TrimSpace(*in.UserID)
	}

	if err := s.Repo.Create(ctx, p); err != nil {
		return Property{}, err
	}
	telemetry.Info("property created", map[string]any{"property_id": p.ID, "user_id": p.UserID})
	events.Emit(ctx, s.Events, events.PropertyCreated, p.ID)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Property{}, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return Property{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if err := apply(&p, in); err != nil {
		return Property{}, err
	}
	p.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, p); err != nil {
		return Property{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	n, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	for _, d := range s.Dependents {
		if err := d.DeleteByProperty(ctx, id); err != nil {
			telemetry.Warn("property dependents cleanup failed", map[string]any{
				"property_id": id,
				"error":       err.Error(),
			})
		}
	}
	telemetry.Info("property deleted", map[string]any{"property_id": id})
	events.Emit(ctx, s.Events, events.PropertyDeleted, id)
	return nil
}

func apply(p *Property, in Input) error {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if *in.Price < 0 || math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) {
			return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidInput)
		}
		p.Price = math.Round(*in.Price*100) / 100
	}
	if in.Bedrooms != nil {
		if *in.Bedrooms < 0 {
			return fmt.Errorf("%w: bedrooms must be >= 0", ErrInvalidInput)
		}
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		if *in.Bathrooms < 0 {
			return fmt.Errorf("%w: bathrooms must be >= 0", ErrInvalidInput)
		}
		p.Bathrooms = *in.Bathrooms
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return fmt.Errorf("%w: latitude out of range", ErrInvalidInput)
		}
		lat := *in.Latitude
		p.Latitude = &lat
	}
	if in.Longitude != nil {
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return fmt.Errorf("%w: longitude out of range", ErrInvalidInput)
		}
		lng := *in.Longitude
		p.Longitude = &lng
	}
	if in.Status != nil {
		p.Status = strings.TrimSpace(*in.Status)
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: property id must be a uuid", ErrInvalidInput)
	}
	return nil
}
