package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"housy-backend/internal/events"
	"housy-backend/internal/shared/metrics"
	"housy-backend/internal/shared/telemetry"
)

// PropertyLookup reports whether a property exists.
type PropertyLookup interface {
	Exists(ctx context.Context, propertyID string) (bool, error)
}

type Service struct {
	AI         AIClient
	Repo       Repo
	Cache      Cache
	Properties PropertyLookup
	Events     events.Publisher
	Now        func() time.Time
}

func NewService(ai AIClient, repo Repo, cache Cache, properties PropertyLookup, publisher events.Publisher) *Service {
	return &Service{AI: ai, Repo: repo, Cache: cache, Properties: properties, Events: publisher, Now: time.Now}
}

// Enrich asks the AI service for a listing sheet, stores it and refreshes the cache.
func (s *Service) Enrich(ctx context.Context, propertyID string) (Params, error) {
	if err := s.checkProperty(ctx, propertyID); err != nil {
		return Params{}, err
	}

	res, err := s.AI.Enrich(ctx, propertyID)
	if err != nil {
		metrics.IncEnrichmentRequest("error")
		telemetry.Error("ai enrichment failed", map[string]any{
			"property_id": propertyID,
			"request_id":  telemetry.RequestIDFromContext(ctx),
			"error":       err.Error(),
		})
		if errors.Is(err, ErrNotConfigured) {
			return Params{}, err
		}
		return Params{}, errors.Join(ErrUpstream, err)
	}
	metrics.IncEnrichmentRequest("ok")

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().UTC()
	saved, err := s.Repo.Upsert(ctx, Params{
		ID:                 uuid.NewString(),
		PropertyID:         propertyID,
		Title:              res.Title,
		Description:        res.Description,
		PriceEstimate:      res.PriceEstimate,
		RecommendedPhotos:  nonNil(res.RecommendedPhotos),
		QualityOfLifeScore: res.QualityOfLifeScore,
		LocationDetails:    res.LocationDetails,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	})
	if err != nil {
		return Params{}, fmt.Errorf("store enrichment: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, saved); err != nil {
			telemetry.Warn("enrichment cache set failed", map[string]any{"property_id": propertyID, "error": err.Error()})
		}
	}
	events.Emit(ctx, s.Events, events.PropertyEnriched, propertyID)
	return saved, nil
}

// Get returns the stored record, reading through the cache when one is configured.
func (s *Service) Get(ctx context.Context, propertyID string) (Params, error) {
	if _, err := uuid.Parse(propertyID); err != nil {
		return Params{}, fmt.Errorf("%w: propertyId must be a uuid", ErrInvalidInput)
	}
	if s.Cache != nil {
		p, ok, err := s.Cache.Get(ctx, propertyID)
		if err != nil {
			telemetry.Warn("enrichment cache get failed", map[string]any{"property_id": propertyID, "error": err.Error()})
		} else if ok {
			return p, nil
		}
	}

	p, err := s.Repo.GetByProperty(ctx, propertyID)
	if err != nil {
		return Params{}, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, p); err != nil {
			telemetry.Warn("enrichment cache set failed", map[string]any{"property_id": propertyID, "error": err.Error()})
		}
	}
	return p, nil
}

func (s *Service) checkProperty(ctx context.Context, propertyID string) error {
	if _, err := uuid.Parse(propertyID); err != nil {
		return fmt.Errorf("%w: propertyId must be a uuid", ErrInvalidInput)
	}
	if s.Properties == nil {
		return nil
	}
	ok, err := s.Properties.Exists(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("lookup property: %w", err)
	}
	if !ok {
		return ErrPropertyNotFound
	}
	return nil
}
