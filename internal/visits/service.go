package visits

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"housy-backend/internal/events"
	"housy-backend/internal/shared/auth"
	"housy-backend/internal/shared/telemetry"
)

const dayLayout = "2006-01-02"

// PropertyLookup reports whether a property exists.
type PropertyLookup interface {
	Exists(ctx context.Context, propertyID string) (bool, error)
}

type Service struct {
	Repo       Repo
	Properties PropertyLookup
	Events     events.Publisher
	Now        func() time.Time
}

func NewService(repo Repo, properties PropertyLookup, publisher events.Publisher) *Service {
	return &Service{Repo: repo, Properties: properties, Events: publisher, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// ScheduleInput is the raw request for a new visit. Status defaults to scheduled.
type ScheduleInput struct {
	PropertyID string
	Date       string
	Status     string
}

// Schedule books a visit for the caller.
func (s *Service) Schedule(ctx context.Context, caller auth.Claims, in ScheduleInput) (Visit, error) {
	if _, err := uuid.Parse(in.PropertyID); err != nil {
		return Visit{}, fmt.Errorf("%w: propertyId must be a uuid", ErrInvalidInput)
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return Visit{}, err
	}
	status := StatusScheduled
	if strings.TrimSpace(in.Status) != "" {
		st, ok := ParseStatus(in.Status)
		if !ok {
			return Visit{}, fmt.Errorf("%w: status must be scheduled, completed or cancelled", ErrInvalidInput)
		}
		status = st
	}
	if caller.UserID() == "" {
		return Visit{}, fmt.Errorf("%w: missing user", ErrInvalidInput)
	}

	if s.Properties != nil {
		ok, err := s.Properties.Exists(ctx, in.PropertyID)
		if err != nil {
			return Visit{}, fmt.Errorf("lookup property: %w", err)
		}
		if !ok {
			return Visit{}, ErrPropertyNotFound
		}
	}
	if status != StatusCancelled {
		if err := s.checkConflict(ctx, in.PropertyID, date, 0); err != nil {
			return Visit{}, err
		}
	}

	now := s.now()
	v, err := s.Repo.Create(ctx, Visit{
		Date:       date,
		Status:     status,
		PropertyID: in.PropertyID,
		UserID:     caller.UserID(),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Visit{}, err
	}

	telemetry.Info("visit scheduled", map[string]any{
		"visit_id":    v.ID,
		"property_id": v.PropertyID,
		"user_id":     v.UserID,
	})
	events.Emit(ctx, s.Events, events.VisitScheduled, strconv.FormatInt(v.ID, 10))
	return v, nil
}

// CalendarByUser lists a user's visits by date. Clients may only read their own
// calendar. An empty calendar is reported as ErrNoVisits.
func (s *Service) CalendarByUser(ctx context.Context, caller auth.Claims, userID string) ([]Visit, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("%w: userId must be a uuid", ErrInvalidInput)
	}
	if caller.Role == auth.RoleClient && caller.UserID() != userID {
		return nil, auth.ErrForbidden
	}
	items, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoVisits
	}
	return items, nil
}

// GroupByDay buckets visits by their UTC calendar day (YYYY-MM-DD), keeping input order.
func GroupByDay(items []Visit) map[string][]Visit {
	out := make(map[string][]Visit)
	for _, v := range items {
		day := v.Date.UTC().Format(dayLayout)
		out[day] = append(out[day], v)
	}
	return out
}

func (s *Service) ByProperty(ctx context.Context, propertyID string) ([]Visit, error) {
	if _, err := uuid.Parse(propertyID); err != nil {
		return nil, fmt.Errorf("%w: propertyId must be a uuid", ErrInvalidInput)
	}
	return s.Repo.ListByProperty(ctx, propertyID)
}

// Cancel marks a visit cancelled. Cancelling twice is rejected.
func (s *Service) Cancel(ctx context.Context, caller auth.Claims, id int64) (Visit, error) {
	v, err := s.owned(ctx, caller, id)
	if err != nil {
		return Visit{}, err
	}
	if v.Status == StatusCancelled {
		return Visit{}, fmt.Errorf("%w: already cancelled", ErrInvalidState)
	}
	v.Status = StatusCancelled
	v.UpdatedAt = s.now()

	v, err = s.Repo.Update(ctx, v)
	if err != nil {
		return Visit{}, err
	}
	telemetry.Info("visit cancelled", map[string]any{"visit_id": v.ID})
	events.Emit(ctx, s.Events, events.VisitCancelled, strconv.FormatInt(v.ID, 10))
	return v, nil
}

// Reschedule moves a visit to a new date and makes it active again. Completed
// visits cannot be moved.
func (s *Service) Reschedule(ctx context.Context, caller auth.Claims, id int64, rawDate string) (Visit, error) {
	date, err := parseDate(rawDate)
	if err != nil {
		return Visit{}, err
	}
	v, err := s.owned(ctx, caller, id)
	if err != nil {
		return Visit{}, err
	}
	if v.Status == StatusCompleted {
		return Visit{}, fmt.Errorf("%w: visit already completed", ErrInvalidState)
	}
	if err := s.checkConflict(ctx, v.PropertyID, date, v.ID); err != nil {
		return Visit{}, err
	}

	v.Date = date
	v.Status = StatusScheduled
	v.UpdatedAt = s.now()
	v, err = s.Repo.Update(ctx, v)
	if err != nil {
		return Visit{}, err
	}
	telemetry.Info("visit rescheduled", map[string]any{"visit_id": v.ID})
	events.Emit(ctx, s.Events, events.VisitRescheduled, strconv.FormatInt(v.ID, 10))
	return v, nil
}

func (s *Service) owned(ctx context.Context, caller auth.Claims, id int64) (Visit, error) {
	if id <= 0 {
		return Visit{}, fmt.Errorf("%w: id must be a positive integer", ErrInvalidInput)
	}
	v, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Visit{}, err
	}
	if caller.Role == auth.RoleClient && v.UserID != caller.UserID() {
		return Visit{}, auth.ErrForbidden
	}
	return v, nil
}

func (s *Service) checkConflict(ctx context.Context, propertyID string, date time.Time, excludeID int64) error {
	taken, err := s.Repo.HasConflict(ctx, propertyID, date, excludeID)
	if err != nil {
		return fmt.Errorf("check visit conflict: %w", err)
	}
	if taken {
		return ErrConflict
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be RFC3339", ErrInvalidInput)
	}
	return t.UTC(), nil
}
