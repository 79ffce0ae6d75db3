package photos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housy-backend/internal/shared/storage/object"
)

type fakeBackend struct {
	mu          sync.Mutex
	uploadRes   object.UploadResult
	uploadErr   error
	deleteRes   object.DeleteResult
	deleteErr   error
	uploads     []string
	deletes     []string
	deleteCtxOK []bool
}

func (b *fakeBackend) Upload(_ context.Context, _ []byte, name, _ string) (object.UploadResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, name)
	if b.uploadErr != nil {
		return object.UploadResult{}, b.uploadErr
	}
	return b.uploadRes, nil
}

func (b *fakeBackend) Delete(ctx context.Context, publicID string) (object.DeleteResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, publicID)
	b.deleteCtxOK = append(b.deleteCtxOK, ctx.Err() == nil)
	if b.deleteErr != nil {
		return object.DeleteResult{}, b.deleteErr
	}
	return b.deleteRes, nil
}

type failingRepo struct {
	*MemoryRepo
	createErr error
	deleteErr error
}

func (r *failingRepo) Create(ctx context.Context, p Photo) (Photo, error) {
	if r.createErr != nil {
		return Photo{}, r.createErr
	}
	return r.MemoryRepo.Create(ctx, p)
}

func (r *failingRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	return r.MemoryRepo.Delete(ctx, id)
}

type staticProperties map[string]bool

func (p staticProperties) Exists(_ context.Context, id string) (bool, error) {
	return p[id], nil
}

const propertyID = "6f1c1c86-5d8f-4f43-9a32-6a5c1e1b2c3d"

func newTestService(backend *fakeBackend, repo Repo) *Service {
	svc := NewService(backend, repo, staticProperties{propertyID: true})
	svc.Now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestUploadPersistsPhoto(t *testing.T) {
	backend := &fakeBackend{uploadRes: object.UploadResult{URL: "https://cdn/x.jpg", PublicID: "pid1"}}
	repo := NewMemoryRepo()
	svc := newTestService(backend, repo)

	photo, err := svc.Upload(context.Background(), propertyID, SectionKitchen, make([]byte, 2<<20), "x.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.NotZero(t, photo.ID)
	assert.Equal(t, "https://cdn/x.jpg", photo.URL)
	assert.Equal(t, "pid1", photo.PublicID)
	assert.Equal(t, SectionKitchen, photo.Section)
	assert.Equal(t, propertyID, photo.PropertyID)

	require.Len(t, backend.uploads, 1)
	assert.Contains(t, backend.uploads[0], "properties/"+propertyID+"/")
	assert.Contains(t, backend.uploads[0], "_x.jpg")

	stored, err := repo.ListByProperty(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestUploadKeysAreUnique(t *testing.T) {
	backend := &fakeBackend{uploadRes: object.UploadResult{URL: "u", PublicID: "p"}}
	svc := newTestService(backend, NewMemoryRepo())

	for i := 0; i < 2; i++ {
		_, err := svc.Upload(context.Background(), propertyID, SectionBedroom, []byte("x"), "same.jpg", "image/jpeg")
		require.NoError(t, err)
	}
	require.Len(t, backend.uploads, 2)
	assert.NotEqual(t, backend.uploads[0], backend.uploads[1])
}

func TestUploadFailureCreatesNoRow(t *testing.T) {
	backend := &fakeBackend{uploadErr: object.ErrUpload}
	repo := NewMemoryRepo()
	svc := newTestService(backend, repo)

	_, err := svc.Upload(context.Background(), propertyID, SectionExterior, []byte("x"), "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, object.ErrUpload)

	stored, err := repo.ListByProperty(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, backend.deletes)
}

func TestPersistFailureCompensatesOnce(t *testing.T) {
	tests := []struct {
		name      string
		deleteRes object.DeleteResult
		deleteErr error
	}{
		{name: "compensation succeeds", deleteRes: object.DeleteResult{Success: true}},
		{name: "provider rejects compensation", deleteRes: object.DeleteResult{Success: false, Message: "denied"}},
		{name: "provider unreachable", deleteErr: object.ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{
				uploadRes: object.UploadResult{URL: "https://cdn/x.jpg", PublicID: "pid1"},
				deleteRes: tt.deleteRes,
				deleteErr: tt.deleteErr,
			}
			dbErr := errors.New("db down")
			repo := &failingRepo{MemoryRepo: NewMemoryRepo(), createErr: dbErr}
			svc := newTestService(backend, repo)

			_, err := svc.Upload(context.Background(), propertyID, SectionKitchen, []byte("x"), "x.jpg", "image/jpeg")
			assert.ErrorIs(t, err, ErrPersistence)
			assert.ErrorIs(t, err, dbErr)
			assert.Equal(t, []string{"pid1"}, backend.deletes)

			stored, err := repo.ListByProperty(context.Background(), propertyID)
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestCompensationSurvivesCanceledRequest(t *testing.T) {
	backend := &fakeBackend{
		uploadRes: object.UploadResult{URL: "u", PublicID: "pid1"},
		deleteRes: object.DeleteResult{Success: true},
	}
	ctx, cancel := context.WithCancel(context.Background())
	repo := &cancelingRepo{MemoryRepo: NewMemoryRepo(), cancel: cancel}
	svc := newTestService(backend, repo)

	_, err := svc.Upload(ctx, propertyID, SectionKitchen, []byte("x"), "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrPersistence)
	require.Equal(t, []string{"pid1"}, backend.deletes)
	assert.Equal(t, []bool{true}, backend.deleteCtxOK)
}

type cancelingRepo struct {
	*MemoryRepo
	cancel context.CancelFunc
}

func (r *cancelingRepo) Create(ctx context.Context, _ Photo) (Photo, error) {
	r.cancel()
	return Photo{}, ctx.Err()
}

func TestUploadValidation(t *testing.T) {
	backend := &fakeBackend{uploadRes: object.UploadResult{URL: "u", PublicID: "p"}}
	svc := newTestService(backend, NewMemoryRepo())

	_, err := svc.Upload(context.Background(), propertyID, SectionKitchen, nil, "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(context.Background(), propertyID, SectionKitchen, []byte("x"), " ", "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(context.Background(), propertyID, Section("garage"), []byte("x"), "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidSection)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(context.Background(), "11111111-1111-1111-1111-111111111111", SectionKitchen, []byte("x"), "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	assert.Empty(t, backend.uploads)
}

func TestDeleteRemovesObjectThenRow(t *testing.T) {
	backend := &fakeBackend{deleteRes: object.DeleteResult{Success: true}}
	repo := NewMemoryRepo()
	svc := newTestService(backend, repo)

	p, err := repo.Create(context.Background(), Photo{URL: "u", PublicID: "pidX", Section: SectionKitchen, PropertyID: propertyID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Equal(t, []string{"pidX"}, backend.deletes)

	_, err = repo.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingPhotoNeverCallsBackend(t *testing.T) {
	backend := &fakeBackend{}
	svc := newTestService(backend, NewMemoryRepo())

	err := svc.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, backend.deletes)
}

func TestDeleteKeepsRowWhenProviderFails(t *testing.T) {
	tests := []struct {
		name      string
		deleteRes object.DeleteResult
		deleteErr error
	}{
		{name: "provider rejects", deleteRes: object.DeleteResult{Success: false, Message: "denied"}},
		{name: "provider unreachable", deleteErr: object.ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{deleteRes: tt.deleteRes, deleteErr: tt.deleteErr}
			repo := NewMemoryRepo()
			svc := newTestService(backend, repo)

			p, err := repo.Create(context.Background(), Photo{URL: "u", PublicID: "pidX", Section: SectionKitchen, PropertyID: propertyID})
			require.NoError(t, err)

			err = svc.Delete(context.Background(), p.ID)
			assert.ErrorIs(t, err, ErrUpstream)

			_, err = repo.GetByID(context.Background(), p.ID)
			assert.NoError(t, err, "row must survive a failed provider delete")
		})
	}
}

func TestDeleteWithoutPublicIDSkipsBackend(t *testing.T) {
	backend := &fakeBackend{}
	repo := NewMemoryRepo()
	svc := newTestService(backend, repo)

	p, err := repo.Create(context.Background(), Photo{URL: "u", Section: SectionBathroom, PropertyID: propertyID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Empty(t, backend.deletes)

	_, err = repo.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// A concurrent delete that wins the race leaves zero affected rows.
type racingRepo struct {
	*MemoryRepo
}

func (r *racingRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if _, err := r.MemoryRepo.Delete(ctx, id); err != nil {
		return 0, err
	}
	return r.MemoryRepo.Delete(ctx, id)
}

func TestDeleteLostRaceReportsNotFound(t *testing.T) {
	backend := &fakeBackend{deleteRes: object.DeleteResult{Success: true}}
	repo := &racingRepo{MemoryRepo: NewMemoryRepo()}
	svc := newTestService(backend, repo)

	p, err := repo.Create(context.Background(), Photo{URL: "u", PublicID: "pid", Section: SectionKitchen, PropertyID: propertyID})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), p.ID), ErrNotFound)
}

func TestUpdateSection(t *testing.T) {
	backend := &fakeBackend{}
	repo := NewMemoryRepo()
	svc := newTestService(backend, repo)

	p, err := repo.Create(context.Background(), Photo{URL: "u", PublicID: "pid", Section: SectionKitchen, PropertyID: propertyID})
	require.NoError(t, err)

	updated, err := svc.UpdateSection(context.Background(), p.ID, SectionLivingRoom)
	require.NoError(t, err)
	assert.Equal(t, SectionLivingRoom, updated.Section)
	assert.Equal(t, "u", updated.URL)
	assert.Empty(t, backend.uploads)
	assert.Empty(t, backend.deletes)

	_, err = svc.UpdateSection(context.Background(), 12345, SectionLivingRoom)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateSection(context.Background(), p.ID, Section("attic"))
	assert.ErrorIs(t, err, ErrInvalidSection)
}

func TestParseSection(t *testing.T) {
	s, ok := ParseSection("livingroom")
	assert.True(t, ok)
	assert.Equal(t, SectionLivingRoom, s)

	_, ok = ParseSection("garage")
	assert.False(t, ok)
}
