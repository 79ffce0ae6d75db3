package cloudinary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"housy-backend/internal/shared/storage/object"
)

func TestStubFailsEveryCall(t *testing.T) {
	store := New(Options{CloudName: "demo", APIKey: "key", APISecret: "secret"})
	assert.True(t, store.Configured())

	_, err := store.Upload(context.Background(), []byte("x"), "a.png", "image/png")
	assert.ErrorIs(t, err, object.ErrUpload)
	assert.ErrorIs(t, err, object.ErrNotImplemented)

	_, err = store.Delete(context.Background(), "a.png")
	assert.ErrorIs(t, err, object.ErrNotImplemented)
}

func TestStubWithoutCredentials(t *testing.T) {
	store := New(Options{})
	assert.False(t, store.Configured())

	_, err := store.Upload(context.Background(), []byte("x"), "a.png", "image/png")
	assert.ErrorIs(t, err, object.ErrNotConfigured)
}
