package visits

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Visit is a scheduled viewing of a property by a user.
type Visit struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	Status     Status    `json:"status"`
	PropertyID string    `json:"propertyId"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("visit not found")
	ErrNoVisits         = errors.New("no visits found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPropertyNotFound = errors.New("property not found")
	ErrConflict         = errors.New("property already has a visit at that time")
	ErrInvalidState     = errors.New("visit cannot change from its current status")
)

type Repo interface {
	Create(ctx context.Context, v Visit) (Visit, error)
	GetByID(ctx context.Context, id int64) (Visit, error)
	// ListByUser and ListByProperty return visits ordered by date ascending.
	ListByUser(ctx context.Context, userID string) ([]Visit, error)
	ListByProperty(ctx context.Context, propertyID string) ([]Visit, error)
	Update(ctx context.Context, v Visit) (Visit, error)
	// HasConflict reports whether a non-cancelled visit of propertyID exists at date,
	// ignoring the visit with excludeID.
	HasConflict(ctx context.Context, propertyID string, date time.Time, excludeID int64) (bool, error)
}
