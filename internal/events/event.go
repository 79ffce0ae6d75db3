package events

import (
	"context"
	"encoding/json"
	"time"
)

const eventVersion = 1

// Event types emitted by the API.
const (
	LeadCreated      = "lead.created"
	VisitScheduled   = "visit.scheduled"
	VisitCancelled   = "visit.cancelled"
	VisitRescheduled = "visit.rescheduled"
	PropertyCreated  = "property.created"
	PropertyDeleted  = "property.deleted"
	PropertyEnriched = "property.enriched"
)

// Event is the payload sent to downstream queue consumers.
type Event struct {
	Type       string `json:"type"`
	EntityID   string `json:"entityId"`
	RequestID  string `json:"requestId,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// Publisher delivers events to a queue backend.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// New builds an event stamped with now and the request ID carried by ctx.
func New(ctx context.Context, eventType, entityID string, now time.Time) Event {
	return Event{
		Type:       eventType,
		EntityID:   entityID,
		RequestID:  requestIDFrom(ctx),
		OccurredAt: now.UTC().Format(time.RFC3339Nano),
		Version:    eventVersion,
	}
}

// Encode returns the JSON representation of an event.
func Encode(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

// Decode parses a JSON payload into an Event.
func Decode(payload []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}
