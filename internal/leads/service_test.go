package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housy-backend/internal/events"
	"housy-backend/internal/shared/telemetry"
)

const propertyID = "6f1c1c86-5d8f-4f43-9a32-6a5c1e1b2c3d"

type staticProperties map[string]bool

func (s staticProperties) Exists(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

type failingLookup struct{}

func (failingLookup) Exists(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.events = append(p.events, evt)
	return nil
}

func TestCreatePublishesLeadCreated(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(NewMemoryRepo(), staticProperties{propertyID: true}, pub)
	ctx := telemetry.WithRequestID(context.Background(), "req-7")

	lead, err := svc.Create(ctx, "user-1", propertyID, "  interested  ")
	require.NoError(t, err)
	assert.Equal(t, "interested", lead.Message)
	assert.Equal(t, "user-1", lead.UserID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.LeadCreated, pub.events[0].Type)
	assert.Equal(t, lead.ID, pub.events[0].EntityID)
	assert.Equal(t, "req-7", pub.events[0].RequestID)

	got, err := svc.Get(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead, got)
}

func TestCreateRejectsUnknownProperty(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(NewMemoryRepo(), staticProperties{}, pub)

	_, err := svc.Create(context.Background(), "u", propertyID, "")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	assert.Empty(t, pub.events)

	_, err = svc.Create(context.Background(), "u", "nope", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	svc.Properties = failingLookup{}
	_, err = svc.Create(context.Background(), "u", propertyID, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPropertyNotFound)
}

func TestListAndDelete(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil, nil)
	other := "0b0c3c86-5d8f-4f43-9a32-6a5c1e1b2c3d"

	a, err := svc.Create(context.Background(), "u", propertyID, "a")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "u", other, "b")
	require.NoError(t, err)

	items, err := svc.List(context.Background(), propertyID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	require.NoError(t, svc.Delete(context.Background(), a.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), a.ID), ErrNotFound)

	require.NoError(t, repo.DeleteByProperty(context.Background(), other))
	items, err = svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPGRepoCreateMapsForeignKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO leads").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Lead{ID: "l1", PropertyID: propertyID})
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}
