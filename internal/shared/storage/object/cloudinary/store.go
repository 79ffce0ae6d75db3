// Package cloudinary is a placeholder provider. Every call fails until an SDK
// integration is added.
package cloudinary

import (
	"context"
	"fmt"
	"strings"

	"housy-backend/internal/shared/storage/object"
)

// Options holds the Cloudinary account credentials.
type Options struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Store implements object.Backend for Cloudinary. It performs no network calls.
type Store struct {
	opts Options
}

// New returns a Store; missing credentials are reported on first use.
func New(opts Options) *Store {
	return &Store{opts: opts}
}

// Configured reports whether all credentials are present.
func (s *Store) Configured() bool {
	return strings.TrimSpace(s.opts.CloudName) != "" &&
		strings.TrimSpace(s.opts.APIKey) != "" &&
		strings.TrimSpace(s.opts.APISecret) != ""
}

// Upload fails with object.ErrNotConfigured without credentials, otherwise
// with object.ErrNotImplemented. Both wrap object.ErrUpload.
func (s *Store) Upload(_ context.Context, _ []byte, name, _ string) (object.UploadResult, error) {
	if !s.Configured() {
		return object.UploadResult{}, fmt.Errorf("%w: cloudinary upload %s: %w", object.ErrUpload, name, object.ErrNotConfigured)
	}
	return object.UploadResult{}, fmt.Errorf("%w: cloudinary upload %s: %w", object.ErrUpload, name, object.ErrNotImplemented)
}

// Delete fails with object.ErrNotConfigured or object.ErrNotImplemented.
func (s *Store) Delete(_ context.Context, publicID string) (object.DeleteResult, error) {
	if !s.Configured() {
		return object.DeleteResult{}, fmt.Errorf("cloudinary delete %s: %w", publicID, object.ErrNotConfigured)
	}
	return object.DeleteResult{}, fmt.Errorf("cloudinary delete %s: %w", publicID, object.ErrNotImplemented)
}

var _ object.Backend = (*Store)(nil)
