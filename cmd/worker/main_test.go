package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housy-backend/internal/enrichment"
	"housy-backend/internal/events"
)

type fakeEnricher struct {
	calls []string
	err   error
}

func (f *fakeEnricher) Enrich(_ context.Context, propertyID string) (enrichment.Params, error) {
	f.calls = append(f.calls, propertyID)
	if f.err != nil {
		return enrichment.Params{}, f.err
	}
	return enrichment.Params{PropertyID: propertyID}, nil
}

func TestHandlersEnrichCreatedProperties(t *testing.T) {
	svc := &fakeEnricher{}
	h := handlers(svc)

	require.Contains(t, h, events.PropertyCreated)
	assert.NotContains(t, h, events.PropertyEnriched)

	err := h[events.PropertyCreated](context.Background(), events.Event{Type: events.PropertyCreated, EntityID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, svc.calls)
}

func TestEnrichNewPropertySkipsPermanentFailures(t *testing.T) {
	for _, cause := range []error{
		enrichment.ErrNotConfigured,
		fmt.Errorf("%w: gone", enrichment.ErrPropertyNotFound),
		enrichment.ErrInvalidInput,
	} {
		svc := &fakeEnricher{err: cause}
		err := enrichNewProperty(svc)(context.Background(), events.Event{EntityID: "p1"})
		assert.NoError(t, err, cause.Error())
	}
}

func TestEnrichNewPropertyRetriesUpstreamErrors(t *testing.T) {
	svc := &fakeEnricher{err: errors.Join(enrichment.ErrUpstream, errors.New("502"))}
	err := enrichNewProperty(svc)(context.Background(), events.Event{EntityID: "p1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrichment.ErrUpstream)
}
