package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"housy-backend/internal/shared/storage/object"
)

// API is the subset of the S3 client used by Store.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configures the S3 backend.
type Options struct {
	Region        string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

// Store implements object.Backend using Amazon S3.
type Store struct {
	client  API
	bucket  string
	prefix  string
	baseURL string
}

// New loads the default AWS configuration and returns an S3 backend.
// An empty bucket yields a store that fails every call with object.ErrNotConfigured.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return NewWithClient(nil, opts), nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), opts), nil
}

// NewWithClient builds a Store around an existing client.
func NewWithClient(client API, opts Options) *Store {
	bucket := strings.TrimSpace(opts.Bucket)
	baseURL := strings.TrimSpace(opts.PublicBaseURL)
	if baseURL == "" && bucket != "" {
		region := opts.Region
		if region == "" {
			region = "us-east-1"
		}
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &Store{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		baseURL: baseURL,
	}
}

// Upload puts the payload under the prefixed key. The object key is the public id.
func (s *Store) Upload(ctx context.Context, data []byte, name, mimeType string) (object.UploadResult, error) {
	if s.client == nil || s.bucket == "" {
		return object.UploadResult{}, fmt.Errorf("%w: %w", object.ErrUpload, object.ErrNotConfigured)
	}

	key := object.JoinKey(s.prefix, name)
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String(mimeType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return object.UploadResult{}, fmt.Errorf("%w: s3 put object bucket=%s key=%s: %w", object.ErrUpload, s.bucket, key, err)
		}
		return object.UploadResult{}, fmt.Errorf("%w: %w: s3 put object bucket=%s key=%s: %w", object.ErrUpload, object.ErrTransport, s.bucket, key, err)
	}

	return object.UploadResult{
		URL:              object.PublicURL(s.baseURL, key),
		PublicID:         key,
		ProviderResponse: out,
	}, nil
}

// Delete removes the object. A missing key is reported as success.
func (s *Store) Delete(ctx context.Context, publicID string) (object.DeleteResult, error) {
	if s.client == nil || s.bucket == "" {
		return object.DeleteResult{}, fmt.Errorf("s3 delete: %w", object.ErrNotConfigured)
	}

	out, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err == nil {
		return object.DeleteResult{Success: true, ProviderResponse: out}, nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return object.DeleteResult{}, fmt.Errorf("s3 delete object bucket=%s key=%s: %w: %w", s.bucket, publicID, object.ErrTransport, err)
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return object.DeleteResult{Success: true, Message: "object not found", ProviderResponse: apiErr}, nil
	}
	msg := apiErr.ErrorMessage()
	if msg == "" {
		msg = apiErr.ErrorCode()
	}
	return object.DeleteResult{Success: false, Message: msg, ProviderResponse: apiErr}, nil
}

var _ object.Backend = (*Store)(nil)
