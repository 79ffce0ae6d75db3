package main

import (
	"context"
	"errors"

	"housy-backend/internal/enrichment"
	"housy-backend/internal/events"
	"housy-backend/internal/shared/telemetry"
)

type enricher interface {
	Enrich(ctx context.Context, propertyID string) (enrichment.Params, error)
}

// handlers maps event types to the work the worker does for them. New
// listings are enriched automatically.
func handlers(svc enricher) map[string]events.HandlerFunc {
	return map[string]events.HandlerFunc{
		events.PropertyCreated: enrichNewProperty(svc),
	}
}

func enrichNewProperty(svc enricher) events.HandlerFunc {
	return func(ctx context.Context, evt events.Event) error {
		_, err := svc.Enrich(ctx, evt.EntityID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, enrichment.ErrNotConfigured):
			telemetry.Warn("worker.enrich.skipped", map[string]any{"property_id": evt.EntityID, "reason": "ai service not configured"})
			return nil
		case errors.Is(err, enrichment.ErrPropertyNotFound), errors.Is(err, enrichment.ErrInvalidInput):
			telemetry.Warn("worker.enrich.skipped", map[string]any{"property_id": evt.EntityID, "error": err.Error()})
			return nil
		default:
			return err
		}
	}
}
