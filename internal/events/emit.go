package events

import (
	"context"
	"time"

	"housy-backend/internal/shared/metrics"
	"housy-backend/internal/shared/telemetry"
)

func requestIDFrom(ctx context.Context) string {
	return telemetry.RequestIDFromContext(ctx)
}

// Emit publishes an event and swallows failures after logging them; a queue
// outage never fails the request that produced the event.
func Emit(ctx context.Context, p Publisher, eventType, entityID string) {
	if p == nil {
		return
	}
	evt := New(ctx, eventType, entityID, time.Now())
	if err := p.Publish(ctx, evt); err != nil {
		metrics.IncEventPublished(eventType, "error")
		telemetry.Warn("event publish failed", map[string]any{
			"type":       eventType,
			"entity_id":  entityID,
			"request_id": evt.RequestID,
			"error":      err.Error(),
		})
		return
	}
	metrics.IncEventPublished(eventType, "ok")
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

var _ Publisher = Nop{}
