package enrichment

import (
	"errors"
	"time"
)

// Params is the AI-generated listing sheet stored for a property.
type Params struct {
	ID                 string    `json:"id"`
	PropertyID         string    `json:"propertyId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	PriceEstimate      float64   `json:"priceEstimate"`
	RecommendedPhotos  []string  `json:"recommendedPhotos"`
	QualityOfLifeScore string    `json:"qualityOfLifeScore"`
	LocationDetails    string    `json:"locationDetails"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("enriched params not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPropertyNotFound = errors.New("property not found")
	ErrUpstream         = errors.New("ai service error")
	ErrNotConfigured    = errors.New("ai service not configured")
)
