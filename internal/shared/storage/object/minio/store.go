package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"housy-backend/internal/shared/storage/object"
	"housy-backend/internal/shared/telemetry"
)

// API is the subset of *minio.Client used by Store.
type API interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// Options configures the MinIO backend.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Store implements object.Backend against an S3-compatible MinIO server.
type Store struct {
	client  API
	bucket  string
	prefix  string
	baseURL string
}

// New creates a MinIO client. Missing endpoint or credentials yield a store that
// fails every call with object.ErrNotConfigured.
func New(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Endpoint) == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return NewWithClient(nil, opts), nil
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for endpoint %s: %w", opts.Endpoint, err)
	}
	return NewWithClient(client, opts), nil
}

// NewWithClient builds a Store around an existing client.
func NewWithClient(client API, opts Options) *Store {
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return &Store{
		client:  client,
		bucket:  strings.TrimSpace(opts.Bucket),
		prefix:  strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		baseURL: fmt.Sprintf("%s://%s", scheme, strings.TrimSpace(opts.Endpoint)),
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	if s.client == nil || s.bucket == "" {
		return object.ErrNotConfigured
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	telemetry.Info("minio bucket created", map[string]any{"bucket": s.bucket})
	return nil
}

// Upload stores the payload and returns a path-style URL. The object key is the public id.
func (s *Store) Upload(ctx context.Context, data []byte, name, mimeType string) (object.UploadResult, error) {
	if s.client == nil || s.bucket == "" {
		return object.UploadResult{}, fmt.Errorf("%w: %w", object.ErrUpload, object.ErrNotConfigured)
	}

	key := object.JoinKey(s.prefix, name)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "" {
			return object.UploadResult{}, fmt.Errorf("%w: %w: minio put object bucket=%s key=%s: %w", object.ErrUpload, object.ErrTransport, s.bucket, key, err)
		}
		return object.UploadResult{}, fmt.Errorf("%w: minio put object bucket=%s key=%s: %w", object.ErrUpload, s.bucket, key, err)
	}

	return object.UploadResult{
		URL:              object.PublicURL(s.baseURL, s.bucket+"/"+key),
		PublicID:         key,
		ProviderResponse: info,
	}, nil
}

// Delete removes the object. NoSuchKey is reported as success.
func (s *Store) Delete(ctx context.Context, publicID string) (object.DeleteResult, error) {
	if s.client == nil || s.bucket == "" {
		return object.DeleteResult{}, fmt.Errorf("minio delete: %w", object.ErrNotConfigured)
	}

	err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{})
	if err == nil {
		return object.DeleteResult{Success: true}, nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "":
		return object.DeleteResult{}, fmt.Errorf("minio remove object bucket=%s key=%s: %w: %w", s.bucket, publicID, object.ErrTransport, err)
	case "NoSuchKey":
		return object.DeleteResult{Success: true, Message: "object not found", ProviderResponse: resp}, nil
	}
	msg := resp.Message
	if msg == "" {
		msg = resp.Code
	}
	return object.DeleteResult{Success: false, Message: msg, ProviderResponse: resp}, nil
}

var _ object.Backend = (*Store)(nil)
