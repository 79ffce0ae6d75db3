package photos

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"housy-backend/internal/shared/metrics"
	"housy-backend/internal/shared/storage/object"
	"housy-backend/internal/shared/telemetry"
	"housy-backend/internal/shared/util"
)

// PropertyLookup reports whether a property exists.
type PropertyLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service coordinates the storage backend and the photo repo. Objects are
// created before rows and rows are removed before objects; a failed insert after
// a successful upload is compensated by a best-effort delete at the provider.
type Service struct {
	Backend    object.Backend
	Repo       Repo
	Properties PropertyLookup
	Now        func() time.Time
}

// NewService constructs a Service. properties may be nil.
func NewService(backend object.Backend, repo Repo, properties PropertyLookup) *Service {
	return &Service{Backend: backend, Repo: repo, Properties: properties, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Upload stores the file at the provider and records it for the property.
func (s *Service) Upload(ctx context.Context, propertyID string, section Section, data []byte, originalName, mimeType string) (Photo, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" || len(data) == 0 || strings.TrimSpace(originalName) == "" {
		return Photo{}, ErrInvalidInput
	}
	if !section.Valid() {
		return Photo{}, ErrInvalidSection
	}

	if s.Properties != nil {
		ok, err := s.Properties.Exists(ctx, propertyID)
		if err != nil {
			return Photo{}, fmt.Errorf("%w: lookup property: %w", ErrPersistence, err)
		}
		if !ok {
			return Photo{}, ErrPropertyNotFound
		}
	}

	name, err := util.SanitizeFileName(originalName)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	key := path.Join("properties", propertyID, uuid.NewString()+"_"+name)

	uploaded, err := s.Backend.Upload(ctx, data, key, mimeType)
	if err != nil {
		metrics.IncPhotoUpload("upload_failed")
		telemetry.Error("photo upload failed", map[string]any{
			"property_id": propertyID,
			"key":         key,
			"error":       err,
		})
		return Photo{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	now := s.now()
	saved, err := s.Repo.Create(ctx, Photo{
		URL:        uploaded.URL,
		PublicID:   uploaded.PublicID,
		Section:    section,
		PropertyID: propertyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		metrics.IncPhotoUpload("persist_failed")
		telemetry.Error("photo persist failed", map[string]any{
			"property_id": propertyID,
			"public_id":   uploaded.PublicID,
			"error":       err,
		})
		s.compensate(ctx, uploaded.PublicID)
		if errors.Is(err, ErrPropertyNotFound) {
			return Photo{}, err
		}
		return Photo{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	metrics.IncPhotoUpload("success")
	telemetry.Info("photo uploaded", map[string]any{
		"photo_id":    saved.ID,
		"property_id": propertyID,
		"section":     string(section),
	})
	return saved, nil
}

// compensate removes an object whose row could not be written. Failures are logged only.
func (s *Service) compensate(ctx context.Context, publicID string) {
	if publicID == "" {
		metrics.IncPhotoCompensation("skipped")
		telemetry.Warn("uploaded object has no publicId; cannot roll back", nil)
		return
	}

	res, err := s.Backend.Delete(context.WithoutCancel(ctx), publicID)
	switch {
	case err != nil:
		metrics.IncPhotoCompensation("error")
		telemetry.Error("failed to delete uploaded file during rollback", map[string]any{
			"public_id": publicID,
			"error":     err,
		})
	case !res.Success:
		metrics.IncPhotoCompensation("rejected")
		telemetry.Error("failed to delete uploaded file during rollback", map[string]any{
			"public_id": publicID,
			"message":   res.Message,
		})
	default:
		metrics.IncPhotoCompensation("deleted")
		telemetry.Info("rolled back uploaded file", map[string]any{"public_id": publicID})
	}
}

// Delete removes the stored object and then the row. A provider failure keeps the row.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if p.PublicID != "" {
		res, err := s.Backend.Delete(ctx, p.PublicID)
		if err != nil {
			metrics.IncPhotoDelete("upstream_error")
			return fmt.Errorf("%w: delete %s: %w", ErrUpstream, p.PublicID, err)
		}
		if !res.Success {
			metrics.IncPhotoDelete("upstream_rejected")
			msg := res.Message
			if msg == "" {
				msg = "provider reported failure"
			}
			return fmt.Errorf("%w: delete %s: %s", ErrUpstream, p.PublicID, msg)
		}
	} else {
		telemetry.Warn("photo has no publicId; skipping deletion from storage", map[string]any{"photo_id": id})
	}

	n, err := s.Repo.Delete(ctx, id)
	if err != nil {
		metrics.IncPhotoDelete("persist_failed")
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	metrics.IncPhotoDelete("success")
	telemetry.Info("photo deleted", map[string]any{"photo_id": id, "property_id": p.PropertyID})
	return nil
}

// UpdateSection re-categorizes a photo without touching the stored object.
func (s *Service) UpdateSection(ctx context.Context, id int64, section Section) (Photo, error) {
	if !section.Valid() {
		return Photo{}, ErrInvalidSection
	}
	p, err := s.Repo.UpdateSection(ctx, id, section, s.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Photo{}, ErrNotFound
		}
		return Photo{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return p, nil
}

// ListByProperty returns the photos of a property.
func (s *Service) ListByProperty(ctx context.Context, propertyID string) ([]Photo, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return nil, fmt.Errorf("%w: propertyId is required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(propertyID); err != nil {
		return nil, fmt.Errorf("%w: propertyId must be a UUID", ErrInvalidInput)
	}
	out, err := s.Repo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return out, nil
}
