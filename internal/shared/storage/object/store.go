package object

import (
	"context"
	"errors"
	"strings"
)

// UploadResult describes an object accepted by a provider.
type UploadResult struct {
	URL              string `json:"url"`
	PublicID         string `json:"publicId,omitempty"`
	ProviderResponse any    `json:"providerResponse,omitempty"`
}

// DeleteResult describes the provider's answer to a delete request.
// A missing object is reported as Success.
type DeleteResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	ProviderResponse any    `json:"providerResponse,omitempty"`
}

// Backend stores and removes binary objects at a remote provider.
//
// Upload returns an error wrapping ErrUpload when the payload was not stored.
// Delete returns Success=false when the provider answered with a failure and an
// error wrapping ErrTransport when the provider could not be reached.
type Backend interface {
	Upload(ctx context.Context, data []byte, name, mimeType string) (UploadResult, error)
	Delete(ctx context.Context, publicID string) (DeleteResult, error)
}

var (
	ErrUpload         = errors.New("object upload failed")
	ErrTransport      = errors.New("object storage unreachable")
	ErrNotConfigured  = errors.New("object storage not configured")
	ErrNotImplemented = errors.New("object storage provider not implemented")
)

const (
	ProviderS3         = "s3"
	ProviderMinio      = "minio"
	ProviderLocal      = "local"
	ProviderCloudinary = "cloudinary"
)

// NormalizeProvider maps raw configuration to a known provider name.
func NormalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderS3:
		return ProviderS3
	case ProviderMinio:
		return ProviderMinio
	case ProviderCloudinary:
		return ProviderCloudinary
	default:
		return ProviderLocal
	}
}

// JoinKey prefixes key with prefix using a single slash.
func JoinKey(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

// PublicURL joins a base URL and an object key.
func PublicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}
