package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"housy-backend/internal/shared/storage/object"
)

var errInvalidKey = errors.New("invalid storage key")

// Store implements object.Backend on the local filesystem. Files are expected to be
// served under baseURL by the HTTP router.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local backend rooted at baseDir.
func New(baseDir, baseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: baseURL}
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// Upload writes data under the cleaned key. The relative key is the public id.
func (s *Store) Upload(ctx context.Context, data []byte, name, _ string) (object.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return object.UploadResult{}, fmt.Errorf("%w: %w", object.ErrUpload, err)
	}

	key, err := cleanKey(name)
	if err != nil {
		return object.UploadResult{}, fmt.Errorf("%w: %w", object.ErrUpload, err)
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.UploadResult{}, fmt.Errorf("%w: mkdir: %w", object.ErrUpload, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return object.UploadResult{}, fmt.Errorf("%w: write file: %w", object.ErrUpload, err)
	}

	return object.UploadResult{
		URL:      object.PublicURL(s.baseURL, key),
		PublicID: key,
	}, nil
}

// Delete removes the file. A missing file is reported as success.
func (s *Store) Delete(ctx context.Context, publicID string) (object.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return object.DeleteResult{}, fmt.Errorf("local delete: %w: %w", object.ErrTransport, err)
	}

	key, err := cleanKey(publicID)
	if err != nil {
		return object.DeleteResult{Success: false, Message: err.Error()}, nil
	}

	err = os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	switch {
	case err == nil:
		return object.DeleteResult{Success: true}, nil
	case errors.Is(err, fs.ErrNotExist):
		return object.DeleteResult{Success: true, Message: "object not found"}, nil
	default:
		return object.DeleteResult{Success: false, Message: err.Error()}, nil
	}
}

func cleanKey(key string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(strings.TrimSpace(key))))
	if clean == "." || clean == "" || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") || filepath.IsAbs(clean) {
		return "", errInvalidKey
	}
	return clean, nil
}

var _ object.Backend = (*Store)(nil)
